package location

import "sort"

// Curated gazetteers for substring matching. Entries are lower-case; matching
// is substring-based, so short or compound entries may over-match inside
// unrelated words (e.g. "goa" in "algoa"). That trade-off is intentional: the
// fallback-default behavior compensates and callers treat results as
// best-effort hints, not ground truth.

// indianPlaces covers major Indian cities plus common tourist destinations.
var indianPlaces = map[string]struct{}{
	// Major cities
	"mumbai": {}, "delhi": {}, "bangalore": {}, "bengaluru": {}, "hyderabad": {},
	"ahmedabad": {}, "chennai": {}, "kolkata": {}, "pune": {}, "jaipur": {},
	"surat": {}, "lucknow": {}, "kanpur": {}, "nagpur": {}, "indore": {},
	"thane": {}, "bhopal": {}, "visakhapatnam": {}, "vizag": {}, "patna": {},
	"vadodara": {}, "ghaziabad": {}, "ludhiana": {}, "agra": {}, "nashik": {},
	"faridabad": {}, "meerut": {}, "rajkot": {}, "varanasi": {}, "srinagar": {},
	"aurangabad": {}, "dhanbad": {}, "amritsar": {}, "navi mumbai": {},
	"allahabad": {}, "prayagraj": {}, "ranchi": {}, "howrah": {},
	"coimbatore": {}, "jabalpur": {}, "gwalior": {}, "vijayawada": {},
	"jodhpur": {}, "madurai": {}, "raipur": {}, "kota": {}, "guwahati": {},
	"chandigarh": {}, "thiruvananthapuram": {}, "solapur": {}, "hubballi": {},
	"tiruchirappalli": {}, "tiruppur": {}, "moradabad": {}, "mysuru": {},
	"mysore": {}, "bareilly": {}, "aligarh": {}, "tirupati": {}, "gurgaon": {},
	"gurugram": {}, "salem": {}, "mira-bhayandar": {}, "warangal": {},
	"guntur": {}, "bhiwandi": {}, "saharanpur": {}, "gorakhpur": {},
	"bikaner": {}, "amravati": {}, "noida": {}, "jamshedpur": {}, "bhilai": {},
	"cuttack": {}, "firozabad": {}, "kochi": {}, "cochin": {}, "nellore": {},
	"bhavnagar": {}, "dehradun": {}, "durgapur": {}, "asansol": {},
	"rourkela": {}, "nanded": {}, "kolhapur": {}, "ajmer": {}, "akola": {},
	"gulbarga": {}, "jamnagar": {}, "ujjain": {}, "loni": {}, "siliguri": {},
	"jhansi": {}, "ulhasnagar": {}, "jammu": {}, "sangli-miraj & kupwad": {},
	"mangalore": {}, "erode": {}, "belgaum": {}, "ambattur": {},
	"tirunelveli": {}, "malegaon": {}, "gaya": {}, "jalgaon": {},
	"udaipur": {}, "maheshtala": {},

	// Tourist destinations
	"goa": {}, "kerala": {}, "rajasthan": {}, "kashmir": {}, "ladakh": {},
	"shimla": {}, "manali": {}, "darjeeling": {}, "ooty": {}, "munnar": {},
	"kodaikanal": {}, "mount abu": {}, "rishikesh": {}, "haridwar": {},
	"vaishno devi": {}, "amarnath": {}, "kedarnath": {}, "badrinath": {},
	"golden temple": {}, "red fort": {}, "taj mahal": {}, "ajanta": {},
	"ellora": {}, "hampi": {}, "khajuraho": {}, "konark": {},
	"mahabalipuram": {}, "sanchi": {}, "bodh gaya": {}, "pushkar": {},
	"ranthambore": {}, "jim corbett": {}, "sundarbans": {}, "backwaters": {},
	"andaman": {}, "nicobar": {}, "lakshadweep": {},
}

// worldPlaces covers major international cities and countries.
var worldPlaces = map[string]struct{}{
	// Major international cities
	"london": {}, "paris": {}, "new york": {}, "tokyo": {}, "singapore": {},
	"dubai": {}, "hong kong": {}, "sydney": {}, "melbourne": {},
	"toronto": {}, "vancouver": {}, "los angeles": {}, "san francisco": {},
	"chicago": {}, "boston": {}, "seattle": {}, "amsterdam": {}, "berlin": {},
	"rome": {}, "madrid": {}, "barcelona": {}, "zurich": {}, "geneva": {},
	"vienna": {}, "prague": {}, "budapest": {}, "moscow": {}, "istanbul": {},
	"cairo": {}, "cape town": {}, "johannesburg": {}, "nairobi": {},
	"lagos": {}, "beijing": {}, "shanghai": {}, "seoul": {}, "bangkok": {},
	"kuala lumpur": {}, "jakarta": {}, "manila": {}, "ho chi minh": {},
	"hanoi": {}, "phnom penh": {}, "yangon": {}, "kathmandu": {}, "dhaka": {},
	"colombo": {}, "male": {}, "thimphu": {},

	// Countries
	"india": {}, "usa": {}, "uk": {}, "canada": {}, "australia": {},
	"germany": {}, "france": {}, "italy": {}, "spain": {}, "netherlands": {},
	"switzerland": {}, "austria": {}, "japan": {}, "china": {},
	"south korea": {}, "thailand": {}, "malaysia": {}, "indonesia": {},
	"philippines": {}, "vietnam": {}, "cambodia": {}, "myanmar": {},
	"nepal": {}, "bhutan": {}, "sri lanka": {}, "maldives": {},
	"bangladesh": {},
}

// defaultByKeyword maps tourism keywords to a default Indian destination,
// checked in order when no location was extracted at all. Matching is
// substring-based, so the "seafood" entry is unreachable: "food" is checked
// first and matches inside it. The ordering is kept as-is.
var defaultByKeyword = []struct {
	keyword string
	city    string
}{
	{"food", "delhi"},
	{"vegetarian", "chennai"},
	{"seafood", "mumbai"},
	{"palace", "jaipur"},
	{"fort", "jaipur"},
	{"beach", "goa"},
	{"hill", "shimla"},
	{"mountain", "manali"},
	{"temple", "varanasi"},
	{"culture", "delhi"},
	{"heritage", "agra"},
}

const fallbackLocation = "delhi"

// Sorted views of the gazetteers, so substring scans iterate in a stable
// order and extraction stays deterministic.
var (
	sortedIndianPlaces = sortedKeys(indianPlaces)
	sortedWorldPlaces  = sortedKeys(worldPlaces)
)

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
