// Package models contains data structures used across handlers
package models

// FormState is the upload form as last posted by the page
type FormState struct {
	BucketName   string `form:"bucketName"`
	FolderName   string `form:"folderName"`
	FolderToggle bool   `form:"folderToggle"`
}

// TriggerEnabled reports whether the Upload button may be pressed.
func (f FormState) TriggerEnabled() bool {
	return f.BucketName != ""
}

// ToggleEnabled reports whether the folder switch may be flipped. It follows
// the trigger.
func (f FormState) ToggleEnabled() bool {
	return f.TriggerEnabled()
}

// FolderEditable reports whether the folder field accepts input.
func (f FormState) FolderEditable() bool {
	return f.FolderToggle && f.ToggleEnabled()
}

// Folder is the prefix an upload should use: the folder text while the
// field is editable, otherwise empty.
func (f FormState) Folder() string {
	if !f.FolderEditable() {
		return ""
	}
	return f.FolderName
}
