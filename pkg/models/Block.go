package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type BlockType string

const (
	BlockTypeText         BlockType = "text"
	BlockTypePhoto        BlockType = "photo"
	BlockTypePhotoCluster BlockType = "photoCluster"
	BlockTypeFieldNotes   BlockType = "fieldnotes"
)

type Span string

const (
	SpanDefault Span = ""
	SpanWide    Span = "wide"
)

/*
Block is one unit of an album's content. The concrete types are TextBlock,
PhotoBlock, PhotoClusterBlock, FieldNotesBlock and UnknownBlock.
*/
type Block interface {
	Type() BlockType
}

type TextBlock struct {
	Content string
}

type PhotoBlock struct {
	Src     string
	Caption string
	Span    Span
}

type ClusterPhoto struct {
	Src     string `json:"src"`
	Caption string `json:"caption,omitempty"`
}

// PhotoClusterBlock groups photos. Photos is nil when the document did not
// carry a photo list.
type PhotoClusterBlock struct {
	Photos []ClusterPhoto
	Span   Span
}

type FieldNotesBlock struct {
	Content string
}

// UnknownBlock keeps the position of a block type this version does not
// understand.
type UnknownBlock struct {
	Kind BlockType
}

func (TextBlock) Type() BlockType         { return BlockTypeText }
func (PhotoBlock) Type() BlockType        { return BlockTypePhoto }
func (PhotoClusterBlock) Type() BlockType { return BlockTypePhotoCluster }
func (FieldNotesBlock) Type() BlockType   { return BlockTypeFieldNotes }
func (b UnknownBlock) Type() BlockType    { return b.Kind }

// SpanOf returns the span of photo bearing blocks, and SpanDefault for others.
func SpanOf(b Block) Span {
	switch block := b.(type) {
	case PhotoBlock:
		return block.Span
	case PhotoClusterBlock:
		return block.Span
	}

	return SpanDefault
}

// IsVisual reports whether b is a photo or photo cluster block.
func IsVisual(b Block) bool {
	switch b.(type) {
	case PhotoBlock, PhotoClusterBlock:
		return true
	}

	return false
}

// Blocks is an ordered block sequence decoded from the "type" tagged JSON form.
type Blocks []Block

type blockHeader struct {
	Type BlockType `json:"type"`
}

type contentFields struct {
	Content string `json:"content"`
}

type photoFields struct {
	Src     string `json:"src"`
	Caption string `json:"caption"`
	Span    Span   `json:"span"`
}

type clusterFields struct {
	Photos json.RawMessage `json:"photos"`
	Span   Span            `json:"span"`
}

/*
UnmarshalJSON decodes each element on its own. Only the "type" field is read
up front; the rest of an element is decoded for the four known block types.
Unknown types and malformed known blocks become an UnknownBlock so one bad
element never fails the whole album.
*/
func (b *Blocks) UnmarshalJSON(data []byte) error {
	var (
		err  error
		raws []json.RawMessage
	)

	if err = json.Unmarshal(data, &raws); err != nil {
		return fmt.Errorf("error decoding blocks: %w", err)
	}

	result := make(Blocks, 0, len(raws))

	for _, raw := range raws {
		result = append(result, decodeBlock(raw))
	}

	*b = result
	return nil
}

func decodeBlock(raw json.RawMessage) Block {
	var header blockHeader

	if err := json.Unmarshal(raw, &header); err != nil {
		return UnknownBlock{}
	}

	malformed := UnknownBlock{Kind: header.Type}

	switch header.Type {
	case BlockTypeText, BlockTypeFieldNotes:
		var fields contentFields

		if err := json.Unmarshal(raw, &fields); err != nil {
			return malformed
		}

		if header.Type == BlockTypeText {
			return TextBlock{Content: fields.Content}
		}

		return FieldNotesBlock{Content: fields.Content}

	case BlockTypePhoto:
		var fields photoFields

		if err := json.Unmarshal(raw, &fields); err != nil {
			return malformed
		}

		return PhotoBlock{Src: fields.Src, Caption: fields.Caption, Span: fields.Span}

	case BlockTypePhotoCluster:
		var fields clusterFields

		if err := json.Unmarshal(raw, &fields); err != nil {
			return malformed
		}

		result := PhotoClusterBlock{Span: fields.Span}
		photos := bytes.TrimSpace(fields.Photos)

		/*
		 * Anything that is not a list (missing, null, an object) leaves
		 * Photos nil and the cluster renders as an empty slot.
		 */
		if len(photos) > 0 && photos[0] == '[' {
			if err := json.Unmarshal(photos, &result.Photos); err != nil {
				return malformed
			}
		}

		return result
	}

	return malformed
}
