package dataset

import "strings"

// severity scores primary types from 1 (minor) to 5 (most serious)
var severity = map[string]int{
	"HOMICIDE":                          5,
	"KIDNAPPING":                        5,
	"CRIMINAL SEXUAL ASSAULT":           5,
	"OFFENSE INVOLVING CHILDREN":        5,
	"HUMAN TRAFFICKING":                 5,
	"SEX OFFENSE":                       4,
	"ARSON":                             4,
	"STALKING":                          4,
	"INTIMIDATION":                      4,
	"ROBBERY":                           4,
	"BURGLARY":                          4,
	"WEAPONS VIOLATION":                 4,
	"PROSTITUTION":                      3,
	"CONCEALED CARRY LICENSE VIOLATION": 3,
	"NARCOTICS":                         3,
	"CRIMINAL TRESPASS":                 3,
	"ASSAULT":                           3,
	"MOTOR VEHICLE THEFT":               3,
	"INTERFERENCE WITH PUBLIC OFFICER":  3,
	"LIQUOR LAW VIOLATION":              2,
	"BATTERY":                           2,
	"CRIMINAL DAMAGE":                   2,
	"DECEPTIVE PRACTICE":                2,
	"OTHER OFFENSE":                     2,
	"PUBLIC PEACE VIOLATION":            2,
	"OTHER NARCOTIC VIOLATION":          2,
	"THEFT":                             1,
	"OBSCENITY":                         1,
	"GAMBLING":                          1,
	"PUBLIC INDECENCY":                  1,
	"NON-CRIMINAL":                      1,
}

// Severity returns the 1-5 severity of a primary type, 0 if unmapped
func Severity(primaryType string) int {
	return severity[strings.ToUpper(strings.TrimSpace(primaryType))]
}
