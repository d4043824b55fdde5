package models

import "html/template"

// AppTitle is shown in the page title and heading
const AppTitle = "S3 Bucket Upload App"

// UploadPage is the data for the full upload page
type UploadPage struct {
	Title     string
	CSRFToken string
	Form      FormState
	Result    *ResultView
}

// ResultView is the preview box and status line after an upload attempt
type ResultView struct {
	Message string
	OK      bool
	Size    string

	PreviewURI         template.URL
	PreviewWidth       int
	PreviewHeight      int
	PreviewAlt         string
	PreviewUnavailable bool
}
