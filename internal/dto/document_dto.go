package dto

// PublishEmbedDocumentMessage is the payload of the EMBED_DOCUMENT topic.
type PublishEmbedDocumentMessage struct {
	SourceId string                 `json:"source_id" validate:"required,max=128"`
	Title    string                 `json:"title" validate:"required,max=256"`
	Content  string                 `json:"content" validate:"required"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

type DeleteDocumentMessage struct {
	SourceId string `json:"source_id" validate:"required"`
}

type CorpusStatsResponse struct {
	Chunks int64 `json:"chunks"`
}

type DocumentChunkDTO struct {
	Id         string `json:"id"`
	ChunkIndex int    `json:"chunk_index"`
	Content    string `json:"content"`
}

type SourceDocumentResponse struct {
	SourceId string                 `json:"source_id"`
	Title    string                 `json:"title"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	Chunks   []DocumentChunkDTO     `json:"chunks"`
}
