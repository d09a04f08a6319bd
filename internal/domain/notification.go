package domain

// Block Kit element types used by the staff notification
const (
	BlockTypeHeader  = "header"
	BlockTypeSection = "section"
	BlockTypeDivider = "divider"
	BlockTypeContext = "context"
	TextTypePlain    = "plain_text"
	TextTypeMarkdown = "mrkdwn"
)

// NotificationPayload is the structured message posted to the messaging webhook
type NotificationPayload struct {
	Blocks []Block `json:"blocks"`
}

// Block is a single layout block of a notification
type Block struct {
	Type     string       `json:"type"`
	Text     *TextObject  `json:"text,omitempty"`
	Fields   []TextObject `json:"fields,omitempty"`
	Elements []TextObject `json:"elements,omitempty"`
}

// TextObject is a text element inside a block
type TextObject struct {
	Type string `json:"type"`
	Text string `json:"text"`
}
