package dto

type StartChatRequest struct {
	Question  string `json:"question" validate:"required"`
	SessionId string `json:"session_id" validate:"required"`
	Year      string `json:"year"`
	Semester  string `json:"semester"`
	Subject   string `json:"subject"`
}

type ChatResponse struct {
	Answer string   `json:"answer"`
	Images []string `json:"images"`
}

// ChatSearchMatch is one historical question/answer pair from /search_chats.
type ChatSearchMatch struct {
	SessionId string   `json:"session_id"`
	Question  string   `json:"question"`
	Answer    string   `json:"answer"`
	Subject   string   `json:"subject"`
	Semester  string   `json:"semester"`
	Year      string   `json:"year"`
	FileUsed  string   `json:"file_used,omitempty"`
	Images    []string `json:"images,omitempty"`
}

type SearchChatsResponse struct {
	Matches []ChatSearchMatch `json:"matches"`
}
