package normalize

// TemperParam replaces TEMPER where the output dialect has no temperature
// variable (parameter and model definitions).
const TemperParam = "XYCE_TEMPER"

// directiveAliases maps alternative directive spellings to canonical ones.
var directiveAliases = map[string]string{
	".MACRO":       ".SUBCKT",
	".EOM":         ".ENDS",
	".MEASURE":     ".MEAS",
	".PROBE":       ".PRINT",
	".PLOT":        ".PRINT",
	".TR":          ".TRAN",
	".INITCOND":    ".IC",
	".DCVOLT":      ".IC",
	".OPTION":      ".OPTIONS",
	".OPT":         ".OPTIONS",
	".INCLUDE":     ".INC",
	".INCL":        ".INC",
	".TEMPERATURE": ".TEMP",
	".CSPARAM":     ".PARAM",
	".PROT":        ".PROTECT",
	".UNPROT":      ".UNPROTECT",
}

// modelTypes maps .MODEL type names to the device letter they parameterize.
var modelTypes = map[string]string{
	"R":       "R",
	"RES":     "R",
	"C":       "C",
	"CAP":     "C",
	"L":       "L",
	"IND":     "L",
	"D":       "D",
	"CORE":    "K",
	"DIG":     "Y",
	"NPN":     "Q",
	"PNP":     "Q",
	"LPNP":    "Q",
	"NJF":     "J",
	"PJF":     "J",
	"NMF":     "Z",
	"PMF":     "Z",
	"NMOS":    "M",
	"PMOS":    "M",
	"VSWITCH": "S",
	"SW":      "S",
	"ISWITCH": "W",
	"CSW":     "W",
	"LTRA":    "O",
	"SWITCH":  "SW",
	"ZOD":     "YPDE",
}

// ModelDeviceType returns the device letter a model type applies to.
// Unknown types fall back to the generic "Y" device family.
func ModelDeviceType(modelType string) string {
	if t, ok := modelTypes[upper(modelType)]; ok {
		return t
	}
	return "Y"
}

// optionPackage tells where a foreign .OPTIONS parameter goes. An empty
// Name drops the parameter.
type optionPackage struct {
	Name     string
	Packages []string
	Note     string
}

var optionPackages = map[string]optionPackage{
	"ITL1":   {Name: "MAXSTEP", Packages: []string{"NONLIN"}, Note: "Converting ITL1 into NONLIN MAXSTEP"},
	"ITL4":   {Name: "MAXSTEP", Packages: []string{"NONLIN-TRAN"}, Note: "Converting ITL4 into NONLIN-TRAN MAXSTEP"},
	"ABSTOL": {Note: "Removing ABSTOL, its meaning differs in the output dialect"},
	"VNTOL":  {Name: "ABSTOL", Packages: []string{"NONLIN", "NONLIN-TRAN"}, Note: "Converting VNTOL into NONLIN/NONLIN-TRAN ABSTOL"},
	"RELTOL": {Name: "RELTOL", Packages: []string{"TIMEINT"}},
	"GMIN":   {Name: "GMIN", Packages: []string{"DEVICE"}},
	"TNOM":   {Name: "TNOM", Packages: []string{"DEVICE"}},
	"TEMP":   {Name: "TEMP", Packages: []string{"DEVICE"}},
	"SCALE":  {Name: "SCALE", Packages: []string{"PARSER"}},
	"METHOD": {Name: "METHOD", Packages: []string{"TIMEINT"}},
	"MAXORD": {Name: "MAXORD", Packages: []string{"TIMEINT"}},
}
