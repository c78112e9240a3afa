package dto

// PostPayload is the free-form body of create and update requests.
// Acknowledgements echo every field of it back.
type PostPayload map[string]interface{}

type DeleteAck struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

// UGCShare is the minimal ugcPosts body used for live writes.
type UGCShare struct {
	Author          string            `json:"author"`
	LifecycleState  string            `json:"lifecycleState"`
	SpecificContent map[string]UGCSub `json:"specificContent"`
	Visibility      map[string]string `json:"visibility"`
}

type UGCSub struct {
	ShareCommentary    UGCText `json:"shareCommentary"`
	ShareMediaCategory string  `json:"shareMediaCategory"`
}

type UGCText struct {
	Text string `json:"text"`
}
