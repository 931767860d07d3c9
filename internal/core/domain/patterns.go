package domain

import "regexp"

// Static pattern library for the extraction engine. Loaded once at
// process start, never mutated at runtime.

var (
	cvePattern = regexp.MustCompile(`(?i)CVE-\d{4}-\d{4,}`)

	ipPattern = regexp.MustCompile(
		`\b(?:(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.){3}` +
			`(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\b`)

	// Restricted TLD allow-list keeps version strings and file names out.
	domainPattern = regexp.MustCompile(
		`(?i)\b(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+` +
			`(?:com|net|org|io|ru|cn|xyz|top|info|biz|cc|tk|ml|ga|cf|pw|ws|su|onion)\b`)

	urlPattern = regexp.MustCompile(`(?i)https?://[^\s<>"')\]]+`)

	md5Pattern    = regexp.MustCompile(`\b[a-fA-F0-9]{32}\b`)
	sha1Pattern   = regexp.MustCompile(`\b[a-fA-F0-9]{40}\b`)
	sha256Pattern = regexp.MustCompile(`\b[a-fA-F0-9]{64}\b`)
)

// Benign domains excluded from extraction: platforms, vendors, and the
// news sites we scrape, all of which show up in self-references.
// Entries must be lower-case; the check runs after lower-casing.
var falsePositiveDomains = map[string]struct{}{
	"example.com":          {},
	"microsoft.com":        {},
	"google.com":           {},
	"github.com":           {},
	"twitter.com":          {},
	"facebook.com":         {},
	"linkedin.com":         {},
	"youtube.com":          {},
	"bleepingcomputer.com": {},
	"gbhackers.com":        {},
	"virustotal.com":       {},
}

var threatActors = []string{
	"APT28", "APT29", "APT38", "APT41", "Lazarus", "Lazarus Group",
	"Cozy Bear", "Fancy Bear", "Sandworm", "Turla", "Equation Group",
	"FIN7", "FIN8", "FIN11", "Carbanak", "Cobalt Group", "TA505",
	"Wizard Spider", "Evil Corp", "DarkSide", "REvil", "Conti",
	"LockBit", "BlackCat", "ALPHV", "Cl0p", "Clop", "Hive",
	"Kimsuky", "Mustang Panda", "Stone Panda", "Charming Kitten",
	"Volt Typhoon", "Salt Typhoon", "Scattered Spider", "LAPSUS$",
	"NoName057", "Killnet", "Anonymous Sudan", "UNC2452", "UNC3886",
	"Midnight Blizzard", "Forest Blizzard", "Star Blizzard",
	"Velvet Ant", "Earth Lusca", "BlackTech", "Cicada", "MuddyWater",
}

var malwareFamilies = []string{
	"Emotet", "TrickBot", "QakBot", "Qbot", "IcedID", "BazarLoader",
	"Cobalt Strike", "Metasploit", "Mimikatz", "BloodHound",
	"Ryuk", "Maze", "REvil", "Sodinokibi", "WannaCry", "NotPetya",
	"Agent Tesla", "FormBook", "Remcos", "AsyncRAT", "NjRAT",
	"RedLine", "Raccoon", "Vidar", "Lumma", "StealC",
	"BlackMatter", "DarkSide", "LockBit", "BlackCat", "Hive",
	"SmokeLoader", "Amadey", "SystemBC", "Bumblebee", "PikaBot",
	"Raspberry Robin", "SocGholish", "FakeUpdates", "Gootloader",
	"XWorm", "PlugX", "ShadowPad", "Gh0st RAT", "China Chopper",
	"Sliver", "Brute Ratel", "Havoc", "Nighthawk", "Mythic",
	"SUNBURST", "TEARDROP", "Raindrop", "NOBELIUM",
}

// keywordCategory is one (label, phrase-set) pair. A category activates
// on the first phrase found; at most one activation per category.
// Slices, not maps: downstream counting relies on category-definition
// order.
type keywordCategory struct {
	Label    string
	Keywords []string
}

var ttpCategories = []keywordCategory{
	{"phishing", []string{"phishing", "spear-phishing", "spearphishing", "credential harvesting",
		"social engineering", "malicious email", "phish", "bec", "business email compromise"}},
	{"ransomware", []string{"ransomware", "ransom", "encrypt", "decryptor", "double extortion",
		"data leak site", "extortion", "triple extortion"}},
	{"credential_theft", []string{"credential", "password", "stealer", "infostealer", "keylogger",
		"mimikatz", "dump", "lsass", "ntds", "credential stuffing"}},
	{"lateral_movement", []string{"lateral movement", "psexec", "wmi", "rdp", "smb", "pass the hash",
		"pass the ticket", "pivoting", "bloodhound"}},
	{"c2", []string{"command and control", "c2", "c&c", "beacon", "callback", "implant", "cobalt strike"}},
	{"persistence", []string{"persistence", "scheduled task", "registry", "startup", "service",
		"backdoor", "webshell", "rootkit"}},
	{"exploitation", []string{"exploit", "vulnerability", "zero-day", "0day", "rce", "remote code execution",
		"buffer overflow", "injection", "cve-"}},
	{"data_exfiltration", []string{"exfiltration", "data theft", "data leak", "exfil", "staging", "data breach"}},
	{"initial_access", []string{"initial access", "drive-by", "watering hole", "supply chain",
		"compromised", "trojanized", "malvertising"}},
	{"defense_evasion", []string{"evasion", "obfuscation", "packing", "anti-analysis", "sandbox",
		"disable", "bypass", "living off the land", "lolbin"}},
	{"ai_attack", []string{"prompt injection", "jailbreak", "model poisoning", "adversarial",
		"llm attack", "ai attack", "model extraction", "membership inference",
		"data poisoning", "backdoor attack", "trojan model"}},
	{"ai_abuse", []string{"deepfake", "synthetic media", "ai-generated", "voice cloning",
		"face swap", "ai fraud", "chatgpt", "gpt-4", "claude", "llm",
		"generative ai", "ai-powered malware", "ai phishing"}},
	{"ai_supply_chain", []string{"model supply chain", "hugging face", "pytorch", "tensorflow",
		"model hub", "ai pipeline", "mlops", "model registry"}},
}

var productCategories = []keywordCategory{
	{"aws", []string{"aws", "amazon web services", "s3 bucket", "ec2", "lambda", "cloudfront"}},
	{"azure", []string{"azure", "microsoft azure", "azure ad", "entra", "office 365", "o365", "m365"}},
	{"gcp", []string{"google cloud", "gcp", "bigquery", "cloud run"}},
	{"crowdstrike", []string{"crowdstrike", "falcon"}},
	{"sentinelone", []string{"sentinelone", "sentinel one"}},
	{"palo_alto", []string{"palo alto", "pan-os", "cortex", "prisma"}},
	{"fortinet", []string{"fortinet", "fortigate", "fortios"}},
	{"cisco", []string{"cisco", "meraki", "umbrella", "firepower"}},
	{"microsoft", []string{"microsoft", "windows", "exchange", "sharepoint", "teams", "outlook"}},
	{"vmware", []string{"vmware", "esxi", "vcenter", "horizon"}},
	{"citrix", []string{"citrix", "netscaler", "xenapp"}},
	{"oracle", []string{"oracle", "weblogic", "e-business"}},
	{"sap", []string{"sap", "s4hana", "netweaver"}},
	{"salesforce", []string{"salesforce", "sfdc"}},
	{"ivanti", []string{"ivanti", "pulse secure", "mobileiron"}},
	{"f5", []string{"f5", "big-ip", "nginx"}},
	{"juniper", []string{"juniper", "junos"}},
	{"sophos", []string{"sophos"}},
	{"openai", []string{"openai", "chatgpt", "gpt-4", "gpt-3", "dall-e"}},
	{"anthropic", []string{"anthropic", "claude"}},
	{"google_ai", []string{"gemini", "bard", "palm", "vertex ai"}},
	{"huggingface", []string{"hugging face", "huggingface", "transformers"}},
}

var geographyCategories = []keywordCategory{
	{"russia", []string{"russia", "russian", "moscow", "kremlin", "fsb", "gru", "svr"}},
	{"china", []string{"china", "chinese", "beijing", "prc", "pla", "mss", "apt1", "apt10", "apt41"}},
	{"north_korea", []string{"north korea", "dprk", "pyongyang", "lazarus", "kimsuky", "apt38"}},
	{"iran", []string{"iran", "iranian", "tehran", "irgc", "apt33", "apt34", "apt35", "charming kitten", "muddywater"}},
	{"usa", []string{"united states", "usa", "us-cert", "cisa", "fbi", "nsa"}},
	{"uk", []string{"united kingdom", "uk", "ncsc", "gchq", "britain", "british"}},
	{"eu", []string{"european union", "eu", "europe", "enisa", "europol"}},
	{"israel", []string{"israel", "israeli", "mossad", "unit 8200"}},
	{"ukraine", []string{"ukraine", "ukrainian", "kyiv"}},
	{"india", []string{"india", "indian", "cert-in"}},
	{"australia", []string{"australia", "australian", "acsc"}},
	{"japan", []string{"japan", "japanese", "jpcert"}},
	{"south_korea", []string{"south korea", "korean", "krcert"}},
}

var sectorCategories = []keywordCategory{
	{"financial", []string{"bank", "banking", "financial", "finance", "fintech", "payment", "swift", "crypto", "cryptocurrency", "defi"}},
	{"healthcare", []string{"healthcare", "hospital", "medical", "health", "hipaa", "pharma", "pharmaceutical"}},
	{"government", []string{"government", "federal", "state", "municipal", "public sector", "defense", "military", "dod"}},
	{"energy", []string{"energy", "oil", "gas", "utility", "power grid", "scada", "ics", "ot", "industrial control"}},
	{"technology", []string{"technology", "tech", "software", "saas", "cloud", "it services", "msp"}},
	{"education", []string{"education", "university", "school", "academic", "research"}},
	{"retail", []string{"retail", "e-commerce", "ecommerce", "pos", "point of sale", "merchant"}},
	{"manufacturing", []string{"manufacturing", "industrial", "factory", "supply chain", "logistics"}},
	{"telecom", []string{"telecom", "telecommunications", "carrier", "5g", "mobile network"}},
	{"transportation", []string{"transportation", "aviation", "airline", "maritime", "shipping", "rail"}},
	{"media", []string{"media", "entertainment", "news", "broadcast", "streaming"}},
	{"legal", []string{"legal", "law firm", "attorney"}},
	{"critical_infrastructure", []string{"critical infrastructure", "water", "dam", "nuclear", "pipeline"}},
}
