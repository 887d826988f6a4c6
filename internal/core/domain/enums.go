package domain

import "slices"

// Enum is implemented by every closed string set in the registry model.
type Enum interface {
	Valid() bool
	Options() []string
}

type ManufacturerStatus string

const (
	ManufacturerActive   ManufacturerStatus = "active"
	ManufacturerDefunct  ManufacturerStatus = "defunct"
	ManufacturerAcquired ManufacturerStatus = "acquired"
)

var manufacturerStatuses = []ManufacturerStatus{ManufacturerActive, ManufacturerDefunct, ManufacturerAcquired}

func (s ManufacturerStatus) Valid() bool     { return slices.Contains(manufacturerStatuses, s) }
func (ManufacturerStatus) Options() []string { return enumStrings(manufacturerStatuses) }

type ProductionType string

const (
	ProductionMass      ProductionType = "mass"
	ProductionLimited   ProductionType = "limited"
	ProductionCustom    ProductionType = "custom"
	ProductionPrototype ProductionType = "prototype"
	ProductionOneOff    ProductionType = "one-off"
)

var productionTypes = []ProductionType{ProductionMass, ProductionLimited, ProductionCustom, ProductionPrototype, ProductionOneOff}

func (t ProductionType) Valid() bool     { return slices.Contains(productionTypes, t) }
func (ProductionType) Options() []string { return enumStrings(productionTypes) }

type SignificanceLevel string

const (
	SignificanceHistoric SignificanceLevel = "historic"
	SignificanceNotable  SignificanceLevel = "notable"
	SignificanceRare     SignificanceLevel = "rare"
	SignificanceCustom   SignificanceLevel = "custom"
)

var significanceLevels = []SignificanceLevel{SignificanceHistoric, SignificanceNotable, SignificanceRare, SignificanceCustom}

func (l SignificanceLevel) Valid() bool     { return slices.Contains(significanceLevels, l) }
func (SignificanceLevel) Options() []string { return enumStrings(significanceLevels) }

type ConditionRating string

const (
	ConditionMint      ConditionRating = "mint"
	ConditionExcellent ConditionRating = "excellent"
	ConditionVeryGood  ConditionRating = "very_good"
	ConditionGood      ConditionRating = "good"
	ConditionFair      ConditionRating = "fair"
	ConditionPoor      ConditionRating = "poor"
	ConditionRelic     ConditionRating = "relic"
)

var conditionRatings = []ConditionRating{
	ConditionMint, ConditionExcellent, ConditionVeryGood, ConditionGood,
	ConditionFair, ConditionPoor, ConditionRelic,
}

func (r ConditionRating) Valid() bool     { return slices.Contains(conditionRatings, r) }
func (ConditionRating) Options() []string { return enumStrings(conditionRatings) }

type SourceType string

const (
	SourceManufacturerCatalog SourceType = "manufacturer_catalog"
	SourceAuctionRecord       SourceType = "auction_record"
	SourceMuseum              SourceType = "museum"
	SourceBook                SourceType = "book"
	SourceWebsite             SourceType = "website"
	SourceManualEntry         SourceType = "manual_entry"
	SourcePriceGuide          SourceType = "price_guide"
)

var sourceTypes = []SourceType{
	SourceManufacturerCatalog, SourceAuctionRecord, SourceMuseum, SourceBook,
	SourceWebsite, SourceManualEntry, SourcePriceGuide,
}

func (t SourceType) Valid() bool     { return slices.Contains(sourceTypes, t) }
func (SourceType) Options() []string { return enumStrings(sourceTypes) }

type FinishRarity string

const (
	RarityCommon   FinishRarity = "common"
	RarityUncommon FinishRarity = "uncommon"
	RarityRare     FinishRarity = "rare"
	RarityVeryRare FinishRarity = "very_rare"
)

var finishRarities = []FinishRarity{RarityCommon, RarityUncommon, RarityRare, RarityVeryRare}

func (r FinishRarity) Valid() bool     { return slices.Contains(finishRarities, r) }
func (FinishRarity) Options() []string { return enumStrings(finishRarities) }

func enumStrings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
