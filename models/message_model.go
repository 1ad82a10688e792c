package models

import (
	"encoding/json"
	"net/url"
	"time"

	"github.com/anjiri1684/studlyf_network/apperrors"
)

type MessageType string

const (
	TypeText  MessageType = "text"
	TypeImage MessageType = "image"
	TypeFile  MessageType = "file"
)

// Content is the payload of a message. Only Text, Image and File implement it.
type Content interface {
	Type() MessageType
	validate() error
}

type Text struct {
	Body string
}

type Image struct {
	MediaURL  string
	MediaType string
}

type File struct {
	MediaURL  string
	MediaType string
	FileName  string
	FileSize  int64
}

func (Text) Type() MessageType  { return TypeText }
func (Image) Type() MessageType { return TypeImage }
func (File) Type() MessageType  { return TypeFile }

func (t Text) validate() error {
	if t.Body == "" {
		return apperrors.Validation("text is required")
	}
	return nil
}

func (i Image) validate() error {
	return validateMedia(i.MediaURL, i.MediaType)
}

func (f File) validate() error {
	if err := validateMedia(f.MediaURL, f.MediaType); err != nil {
		return err
	}
	if f.FileName == "" {
		return apperrors.Validation("fileName is required")
	}
	if f.FileSize < 0 {
		return apperrors.Validation("fileSize must not be negative")
	}
	return nil
}

func validateMedia(mediaURL, mediaType string) error {
	if mediaURL == "" {
		return apperrors.Validation("mediaUrl is required")
	}
	if _, err := url.ParseRequestURI(mediaURL); err != nil {
		return apperrors.Validation("mediaUrl is not a valid URI")
	}
	if mediaType == "" {
		return apperrors.Validation("mediaType is required")
	}
	return nil
}

type Message struct {
	ID        string
	From      string
	To        string
	Content   Content
	ForwardOf *string
	Read      bool
	CreatedAt time.Time
}

func (m *Message) Type() MessageType {
	if m.Content == nil {
		return ""
	}
	return m.Content.Type()
}

// Validate checks participants and the content variant. It does not look at
// ID or CreatedAt, which the store assigns.
func (m *Message) Validate() error {
	if m.From == "" {
		return apperrors.Validation("from is required")
	}
	if m.To == "" {
		return apperrors.Validation("to is required")
	}
	if m.Content == nil {
		return apperrors.Validation("content is required")
	}
	return m.Content.validate()
}

// Involves reports whether uid is one of the two participants.
func (m *Message) Involves(uid string) bool {
	return m.From == uid || m.To == uid
}

// ContentFields is the flat column layout used by stores and the wire format.
type ContentFields struct {
	Type      MessageType
	Text      string
	MediaURL  string
	MediaType string
	FileName  string
	FileSize  int64
}

func FieldsOf(c Content) ContentFields {
	switch v := c.(type) {
	case Text:
		return ContentFields{Type: TypeText, Text: v.Body}
	case Image:
		return ContentFields{Type: TypeImage, MediaURL: v.MediaURL, MediaType: v.MediaType}
	case File:
		return ContentFields{Type: TypeFile, MediaURL: v.MediaURL, MediaType: v.MediaType, FileName: v.FileName, FileSize: v.FileSize}
	default:
		return ContentFields{}
	}
}

// Content rebuilds the variant selected by Type. Fields that do not belong to
// the variant are ignored.
func (f ContentFields) Content() (Content, error) {
	var c Content
	switch f.Type {
	case TypeText, "":
		c = Text{Body: f.Text}
	case TypeImage:
		c = Image{MediaURL: f.MediaURL, MediaType: f.MediaType}
	case TypeFile:
		c = File{MediaURL: f.MediaURL, MediaType: f.MediaType, FileName: f.FileName, FileSize: f.FileSize}
	default:
		return nil, apperrors.Validation("unknown message type %q", f.Type)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

type messageJSON struct {
	ID        string      `json:"_id"`
	From      string      `json:"from"`
	To        string      `json:"to"`
	Type      MessageType `json:"type"`
	Text      string      `json:"text,omitempty"`
	MediaURL  string      `json:"mediaUrl,omitempty"`
	MediaType string      `json:"mediaType,omitempty"`
	FileName  string      `json:"fileName,omitempty"`
	FileSize  *int64      `json:"fileSize,omitempty"`
	ForwardOf *string     `json:"forwardOf,omitempty"`
	Read      bool        `json:"read"`
	CreatedAt time.Time   `json:"createdAt"`
}

func (m Message) MarshalJSON() ([]byte, error) {
	f := FieldsOf(m.Content)
	out := messageJSON{
		ID:        m.ID,
		From:      m.From,
		To:        m.To,
		Type:      f.Type,
		Text:      f.Text,
		MediaURL:  f.MediaURL,
		MediaType: f.MediaType,
		FileName:  f.FileName,
		ForwardOf: m.ForwardOf,
		Read:      m.Read,
		CreatedAt: m.CreatedAt,
	}
	if f.Type == TypeFile {
		size := f.FileSize
		out.FileSize = &size
	}
	return json.Marshal(out)
}

func (m *Message) UnmarshalJSON(data []byte) error {
	var in messageJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	f := ContentFields{
		Type:      in.Type,
		Text:      in.Text,
		MediaURL:  in.MediaURL,
		MediaType: in.MediaType,
		FileName:  in.FileName,
	}
	if in.FileSize != nil {
		f.FileSize = *in.FileSize
	}
	content, err := f.Content()
	if err != nil {
		return err
	}
	*m = Message{
		ID:        in.ID,
		From:      in.From,
		To:        in.To,
		Content:   content,
		ForwardOf: in.ForwardOf,
		Read:      in.Read,
		CreatedAt: in.CreatedAt,
	}
	return nil
}

// ReadReceipt is pushed to both participants after a mark-read.
type ReadReceipt struct {
	By       string `json:"by"`
	Peer     string `json:"peer"`
	Modified int64  `json:"modified"`
}
