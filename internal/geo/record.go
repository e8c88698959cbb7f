package geo

// Unknown is the placeholder for any geo field that could not be determined.
const Unknown = "Unknown"

// Local is the country reported for loopback and private addresses.
const Local = "Local"

// Record is the normalized geolocation of one IP address.
// Every field holds either a real value or Unknown.
type Record struct {
	Country   string `json:"country"`
	Region    string `json:"region"`
	City      string `json:"city"`
	Zip       string `json:"zip"`
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
	Timezone  string `json:"timezone"`
	ISP       string `json:"isp"`
	Org       string `json:"org"`
	AS        string `json:"as"`
}

// LocalRecord is returned for addresses that are never sent to a provider.
func LocalRecord() Record {
	r := UnknownRecord()
	r.Country = Local
	return r
}

// UnknownRecord is returned when a provider lookup fails.
func UnknownRecord() Record {
	return Record{
		Country:   Unknown,
		Region:    Unknown,
		City:      Unknown,
		Zip:       Unknown,
		Latitude:  Unknown,
		Longitude: Unknown,
		Timezone:  Unknown,
		ISP:       Unknown,
		Org:       Unknown,
		AS:        Unknown,
	}
}

// normalize replaces empty fields with Unknown.
func (r Record) normalize() Record {
	for _, f := range []*string{
		&r.Country, &r.Region, &r.City, &r.Zip, &r.Latitude,
		&r.Longitude, &r.Timezone, &r.ISP, &r.Org, &r.AS,
	} {
		if *f == "" {
			*f = Unknown
		}
	}
	return r
}
