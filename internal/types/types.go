package types

// Result represents the statistics of one user's dataset file
type Result struct {
	UserID                string
	Instances             int
	Attributes            int
	CharAttributes        int
	PosAttributes         int
	AverageCharacterCount float64 // Characters per sentinel-class instance
	AverageWordCount      float64 // Words per sentinel-class instance
	CharDensity           float64 // CharAttributes / AverageCharacterCount / Instances
	WordDensity           float64 // PosAttributes / AverageWordCount / Instances
	Extended              bool    // Density fields are only meaningful when set
	Digest                uint64  // xxhash64 of the raw file bytes, 0 if not computed
}
