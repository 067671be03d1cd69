package models

// Detection is one row of the detections.csv file the worker writes
// for every processed image.
type Detection struct {
	Image      string  `json:"image"`
	Class      string  `json:"class"`
	Confidence float64 `json:"confidence"`
	Box        Box     `json:"box"`
}

// Box is a detection rectangle in pixel coordinates.
type Box struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}
