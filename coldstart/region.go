package coldstart

import "strings"

// Region 是由邮编首位推导出的美国大区。
type Region string

const (
	RegionNortheast Region = "Northeast"
	RegionSouth     Region = "South"
	RegionMidwest   Region = "Midwest"
	RegionWest      Region = "West"
	RegionOther     Region = "Other"
)

// RegionFromZip 按邮编首位推导大区：0/1 东北，2/3/6/7 南部，4/5 中西部，8/9 西部，其余（含空串）为 Other。
func RegionFromZip(zip string) Region {
	zip = strings.TrimSpace(zip)
	if zip == "" {
		return RegionOther
	}
	switch zip[0] {
	case '0', '1':
		return RegionNortheast
	case '2', '3', '6', '7':
		return RegionSouth
	case '4', '5':
		return RegionMidwest
	case '8', '9':
		return RegionWest
	default:
		return RegionOther
	}
}
