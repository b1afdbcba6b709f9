package domain

import "time"

// File is metadata for an uploaded blob. StorageURL is what the blob store
// returned on put and is the key used when purging.
type File struct {
	ID          string     `gorm:"column:id;primaryKey;size:36" json:"id"`
	Filename    string     `gorm:"column:filename;size:255" json:"filename"`
	ContentType string     `gorm:"column:content_type;size:100" json:"contentType"`
	Size        int64      `gorm:"column:size" json:"size"`
	UploaderID  string     `gorm:"column:uploader_id;size:64;index" json:"uploaderId"`
	StorageURL  string     `gorm:"column:storage_url;size:768;index" json:"storageUrl"`
	DeletedAt   *time.Time `gorm:"column:deleted_at;index" json:"deletedAt,omitempty"`
	CreatedAt   time.Time  `gorm:"column:created_at" json:"createdAt"`
}

// TableName specifies the table name for File model
func (File) TableName() string {
	return "files"
}

// IsVideo reports whether the stored content type is a video
func (f *File) IsVideo() bool {
	return len(f.ContentType) >= 5 && f.ContentType[:5] == "video"
}

// FileUploadResponse represents the response after a file upload
type FileUploadResponse struct {
	URL      string `json:"url"`
	BlobID   string `json:"blobId"`
	FileType string `json:"fileType"`
	IsVideo  bool   `json:"isVideo"`
}

// FileDownload is either a redirect target or an open stream
type FileDownload struct {
	RedirectURL string
	File        *File
}
