package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ayusman/cmykstudio/internal/parts"
)

// ErrMalformedDrop is returned for drop payloads that do not name a known
// role and channel. Drop handlers ignore the drop when they see it.
var ErrMalformedDrop = errors.New("malformed drop payload")

// DropPayload is what the parts sidebar puts on the drag-data channel.
type DropPayload struct {
	Role    parts.Role
	Channel parts.Channel
}

type jsonDrop struct {
	Role    string `json:"role"`
	Channel string `json:"channel"`
	Key     string `json:"key"`
	Color   string `json:"color"`
}

// DecodeDrop parses a drop payload. Two encodings are accepted:
//
//	{"role":"eyes","channel":"c"}   (also {"key":"eyes","color":"c"})
//	role=eyes;channel=c             (";" or "&" separated)
func DecodeDrop(text string) (DropPayload, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return DropPayload{}, fmt.Errorf("%w: empty", ErrMalformedDrop)
	}

	var roleKey, channelKey string
	if strings.HasPrefix(text, "{") {
		var j jsonDrop
		if err := json.Unmarshal([]byte(text), &j); err != nil {
			return DropPayload{}, fmt.Errorf("%w: %v", ErrMalformedDrop, err)
		}
		roleKey, channelKey = firstNonEmpty(j.Role, j.Key), firstNonEmpty(j.Channel, j.Color)
	} else {
		fields := strings.FieldsFunc(text, func(r rune) bool { return r == ';' || r == '&' })
		for _, f := range fields {
			k, v, ok := strings.Cut(f, "=")
			if !ok {
				continue
			}
			switch strings.TrimSpace(k) {
			case "role", "key":
				roleKey = v
			case "channel", "color":
				channelKey = v
			}
		}
	}

	role, err := parts.ParseRole(roleKey)
	if err != nil {
		return DropPayload{}, fmt.Errorf("%w: %v", ErrMalformedDrop, err)
	}
	channel, err := parts.ParseChannel(channelKey)
	if err != nil {
		return DropPayload{}, fmt.Errorf("%w: %v", ErrMalformedDrop, err)
	}
	return DropPayload{Role: role, Channel: channel}, nil
}

// Encode renders the payload in the compact key-value form.
func (p DropPayload) Encode() string {
	return "role=" + p.Role.String() + ";channel=" + p.Channel.Key()
}

// Drop decodes a drop payload and places the matching part at its catalog
// default. Payloads naming a part or channel the catalog has no asset for
// are malformed.
func (s *Scene) Drop(payload string) (string, error) {
	p, err := DecodeDrop(payload)
	if err != nil {
		return "", err
	}

	def, ok := s.catalog.Lookup(p.Role)
	if !ok {
		return "", fmt.Errorf("%w: no part %s", ErrMalformedDrop, p.Role)
	}
	asset, ok := def.Asset(p.Channel)
	if !ok {
		return "", fmt.Errorf("%w: %s has no %s asset", ErrMalformedDrop, p.Role, p.Channel)
	}

	return s.AddLayer(p.Role, p.Channel, asset, def.Default), nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
