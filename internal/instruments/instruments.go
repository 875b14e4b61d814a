// Package instruments holds the fixed Nifty 50 universe. The table is static,
// read-only and fixed at build time; it is used for request construction and
// for enriching responses with a display name.
package instruments

// Instrument pairs an exchange symbol with its display name.
type Instrument struct {
	Symbol string
	Name   string
}

// Nifty50 is the full instrument universe, in index order.
var Nifty50 = []Instrument{
	{"NSE:ADANIENT-EQ", "Adani Enterprises"},
	{"NSE:ADANIPORTS-EQ", "Adani Ports & SEZ"},
	{"NSE:APOLLOHOSP-EQ", "Apollo Hospitals"},
	{"NSE:ASIANPAINT-EQ", "Asian Paints"},
	{"NSE:AXISBANK-EQ", "Axis Bank"},
	{"NSE:BAJAJ-AUTO-EQ", "Bajaj Auto"},
	{"NSE:BAJFINANCE-EQ", "Bajaj Finance"},
	{"NSE:BAJAJFINSV-EQ", "Bajaj Finserv"},
	{"NSE:BEL-EQ", "Bharat Electronics"},
	{"NSE:BHARTIARTL-EQ", "Bharti Airtel"},
	{"NSE:BPCL-EQ", "Bharat Petroleum"},
	{"NSE:BRITANNIA-EQ", "Britannia Industries"},
	{"NSE:CIPLA-EQ", "Cipla"},
	{"NSE:COALINDIA-EQ", "Coal India"},
	{"NSE:DIVISLAB-EQ", "Divi's Laboratories"},
	{"NSE:DRREDDY-EQ", "Dr. Reddy's Laboratories"},
	{"NSE:EICHERMOT-EQ", "Eicher Motors"},
	{"NSE:GRASIM-EQ", "Grasim Industries"},
	{"NSE:HCLTECH-EQ", "HCL Technologies"},
	{"NSE:HDFCBANK-EQ", "HDFC Bank"},
	{"NSE:HDFCLIFE-EQ", "HDFC Life Insurance"},
	{"NSE:HEROMOTOCO-EQ", "Hero MotoCorp"},
	{"NSE:HINDALCO-EQ", "Hindalco Industries"},
	{"NSE:HINDUNILVR-EQ", "Hindustan Unilever"},
	{"NSE:ICICIBANK-EQ", "ICICI Bank"},
	{"NSE:INDUSINDBK-EQ", "IndusInd Bank"},
	{"NSE:INFY-EQ", "Infosys"},
	{"NSE:ITC-EQ", "ITC"},
	{"NSE:JSWSTEEL-EQ", "JSW Steel"},
	{"NSE:KOTAKBANK-EQ", "Kotak Mahindra Bank"},
	{"NSE:LT-EQ", "Larsen & Toubro"},
	{"NSE:LTIM-EQ", "LTIMindtree"},
	{"NSE:M&M-EQ", "Mahindra & Mahindra"},
	{"NSE:MARUTI-EQ", "Maruti Suzuki"},
	{"NSE:NESTLEIND-EQ", "Nestle India"},
	{"NSE:NTPC-EQ", "NTPC"},
	{"NSE:ONGC-EQ", "Oil & Natural Gas Corp"},
	{"NSE:POWERGRID-EQ", "Power Grid Corp"},
	{"NSE:RELIANCE-EQ", "Reliance Industries"},
	{"NSE:SBILIFE-EQ", "SBI Life Insurance"},
	{"NSE:SBIN-EQ", "State Bank of India"},
	{"NSE:SHRIRAMFIN-EQ", "Shriram Finance"},
	{"NSE:SUNPHARMA-EQ", "Sun Pharmaceutical"},
	{"NSE:TATACONSUM-EQ", "Tata Consumer Products"},
	{"NSE:TATAMOTORS-EQ", "Tata Motors"},
	{"NSE:TATASTEEL-EQ", "Tata Steel"},
	{"NSE:TCS-EQ", "Tata Consultancy Services"},
	{"NSE:TECHM-EQ", "Tech Mahindra"},
	{"NSE:TITAN-EQ", "Titan Company"},
	{"NSE:ULTRACEMCO-EQ", "UltraTech Cement"},
}

var nameBySymbol = func() map[string]string {
	m := make(map[string]string, len(Nifty50))
	for _, in := range Nifty50 {
		m[in.Symbol] = in.Name
	}
	return m
}()

// Symbols returns the universe's symbols in table order.
func Symbols() []string {
	out := make([]string, len(Nifty50))
	for i, in := range Nifty50 {
		out[i] = in.Symbol
	}
	return out
}

// NameFor returns the display name for a symbol, falling back to the raw
// symbol when unknown.
func NameFor(symbol string) string {
	if n, ok := nameBySymbol[symbol]; ok {
		return n
	}
	return symbol
}
