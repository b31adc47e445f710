package config

import "cryptocap/pkg/contracts"

// Application constants
const (
	AppName     = "cryptocap"
	AppVersion  = contracts.Version
	ServiceName = "cryptocap"

	// EnvPrefix prefixes every environment variable, e.g. CRYPTOCAP_ANALYSIS_TOP_N
	EnvPrefix = "CRYPTOCAP"

	DefaultInputFile    = "datasets/coinmarketcap_06122017.csv"
	DefaultOutputDir    = "data/reports"
	DefaultWorkbookName = "crypto_charts.xlsx"
	DefaultLogFile      = "logs/app.log"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultRateLimit = 50 // requests per second
	DefaultBurstSize = 100
)

// Analysis defaults
const (
	DefaultTopN    = 10
	DefaultMoversN = 10

	// LargeCapThresholdUSD is the inclusive lower bound of the large-cap selection
	LargeCapThresholdUSD = 10_000_000_000

	// BigCapMinUSD and MicroCapMinUSD split the filtered table into big, micro and nano
	BigCapMinUSD   = 300_000_000
	MicroCapMinUSD = 50_000_000
)

// Chart defaults
const (
	DefaultChartStyle = "fivethirtyeight"
)

// DefaultTopCapColors colors the top ten capitalization bars
var DefaultTopCapColors = []string{
	"orange", "green", "orange", "cyan", "cyan",
	"blue", "silver", "orange", "red", "green",
}
