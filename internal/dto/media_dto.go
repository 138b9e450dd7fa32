package dto

type MediaUploadResponseDTO struct {
	URL         string `json:"url"`
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
}

type VideoCreateDTO struct {
	Title        string `json:"title" binding:"required,max=200"`
	CollectionID string `json:"collection_id" binding:"max=100"`
}

type VideoResponseDTO struct {
	GUID         string `json:"guid"`
	Title        string `json:"title"`
	LibraryID    string `json:"library_id"`
	Status       int    `json:"status"`
	Length       int    `json:"length"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	EmbedURL     string `json:"embed_url"`
}

type MediaUploadDTO struct {
	Type string `form:"type" binding:"required,oneof=image video document"`
}
