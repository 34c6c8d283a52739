package dto

type IngestDocumentRequest struct {
	SourcePath string `json:"source_path,omitempty" validate:"omitempty,max=1024"`
}

// IngestDocumentMessage is the payload on the INGEST_DOCUMENT topic.
type IngestDocumentMessage struct {
	SourcePath  string `json:"source_path"`
	RequestedBy string `json:"requested_by"`
}

type IngestAcceptedResponse struct {
	Status     string `json:"status"`
	SourcePath string `json:"source_path"`
}
