package feature

// Flag is named such that checking for a feature uses `feature.Flag.Enabled(feature.ExampleFeature)`.
var Flag = New()

// flag names are written in kebab-case
const (
	SizeRaceBackoff FlagName = "size-race-backoff"
	StrictAttrNames FlagName = "strict-attr-names"
)

func init() {
	Flag.SetFlags(map[FlagName]FlagDesc{
		SizeRaceBackoff: {Type: Alpha, Description: "wait with an exponential backoff before retrying when an attribute changes size between probe and fetch, instead of retrying immediately"},
		StrictAttrNames: {Type: Beta, Description: "fail listing attributes if the kernel returns a name that is not valid UTF-8"},
	})
}
