package operations

import "time"

// Pipeline step identifiers, in execution order
const (
	StageIDLoad       = "load"
	StageIDFilter     = "filter"
	StageIDRank       = "rank"
	StageIDVolatility = "volatility"
	StageIDClassify   = "classify"
	StageIDPresent    = "present"
	StageIDExport     = "export"
)

// Pipeline step names
const (
	StageNameLoad       = "Snapshot Loading"
	StageNameFilter     = "Capitalization Filter"
	StageNameRank       = "Capitalization Ranking"
	StageNameVolatility = "Volatility Extraction"
	StageNameClassify   = "Tier Classification"
	StageNamePresent    = "Chart Rendering"
	StageNameExport     = "CSV Export"
)

// Default timeouts
const (
	DefaultStageTimeout  = 2 * time.Minute
	DefaultLoadTimeout   = 5 * time.Minute
	DefaultRenderTimeout = 5 * time.Minute
)
