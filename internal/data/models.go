package data

// Sheet is a character sheet as written in YAML:
//
//	name: Paulo
//	rolls:
//	  sword: 1d20 + str + prof
//	variables:
//	  str: 3
//	  prof: 2
type Sheet struct {
	Name      string            `yaml:"name"`
	Rolls     map[string]string `yaml:"rolls"`
	Variables map[string]int64  `yaml:"variables"`
}
