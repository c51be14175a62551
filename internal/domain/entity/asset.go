package entity

// Asset is a single file from the collection asset directory.
type Asset struct {
	Index       string
	Path        string
	ContentType string
}
