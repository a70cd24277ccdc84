package feature

type FeatureType string

const (
	FeatureTypeWeekday FeatureType = "weekday"
)

// Feature is a named column of the design matrix. String must be unique per feature since it
// is used as the column key and determines the column order.
type Feature interface {
	String() string
	Get(string) (string, bool)
	Type() FeatureType
	Decode() map[string]string
}
