package imageedit

// EncodeHistory converts prior turns into provider messages.
//
// Images are only re-submitted for user turns; a model turn contributes its
// text alone. Parts that encode to nothing are filtered out and a turn left
// with no parts is dropped, so the output may be shorter than the session.
func EncodeHistory(turns []Turn) []WireMessage {
	out := make([]WireMessage, 0, len(turns))
	for _, t := range turns {
		var parts []WirePart
		for _, p := range t.Parts {
			parts = append(parts, encodePart(t.Role, p)...)
		}

		kept := parts[:0]
		for _, wp := range parts {
			if !wp.IsEmpty() {
				kept = append(kept, wp)
			}
		}
		if len(kept) == 0 {
			continue
		}

		out = append(out, WireMessage{Role: t.Role, Parts: kept})
	}
	return out
}

func encodePart(role Role, p Part) []WirePart {
	switch p := p.(type) {
	case Text:
		return []WirePart{TextPart(p.Content)}
	case ImageRef:
		if role != RoleUser {
			return nil
		}
		return []WirePart{ImagePart(p.Image)}
	case ImageRefList:
		if role != RoleUser {
			return nil
		}
		parts := make([]WirePart, 0, len(p.Images))
		for _, img := range p.Images {
			parts = append(parts, ImagePart(img))
		}
		return parts
	default:
		return nil
	}
}

// DecodeHistory rebuilds turns from provider messages. Each inline image
// becomes an ImageRef; empty parts and empty messages are skipped.
func DecodeHistory(msgs []WireMessage) []Turn {
	turns := make([]Turn, 0, len(msgs))
	for _, m := range msgs {
		t := Turn{Role: m.Role}
		for _, wp := range m.Parts {
			switch {
			case wp.InlineData != nil && wp.InlineData.Data != "":
				t.Parts = append(t.Parts, ImageRef{Image: DataURL{
					MIMEType: wp.InlineData.MIMEType,
					Payload:  wp.InlineData.Data,
				}})
			case wp.Text != nil:
				t.Parts = append(t.Parts, Text{Content: *wp.Text})
			}
		}
		if len(t.Parts) == 0 {
			continue
		}
		turns = append(turns, t)
	}
	return turns
}
