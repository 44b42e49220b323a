package session

import (
	"bytes"
	"encoding/xml"

	"mellium.im/xmpp/jid"
)

// tokenReader is the minimal surface decodeStanza needs from a
// mellium xmlstream.TokenReader.
type tokenReader interface {
	Token() (xml.Token, error)
}

// decodeStanza reads the remainder of a message/presence/iq element
// (start already consumed) and builds the generalized Stanza view the
// dispatch registry matches on, while also buffering the full element
// as raw XML so a matched handler can re-decode its own payload shape
// with encoding/xml.Unmarshal.
func decodeStanza(tr tokenReader, start xml.StartElement) Stanza {
	st := Stanza{Name: start.Name.Local}
	for _, attr := range start.Attr {
		switch attr.Name.Local {
		case "type":
			st.Type = attr.Value
		case "id":
			st.ID = attr.Value
		case "from":
			if j, err := jid.Parse(attr.Value); err == nil {
				st.From = j
			}
		case "to":
			if j, err := jid.Parse(attr.Value); err == nil {
				st.To = j
			}
		}
	}

	var raw bytes.Buffer
	enc := xml.NewEncoder(&raw)
	_ = enc.EncodeToken(start)

	depth := 1
	childSeen := false
	for depth > 0 {
		tok, err := tr.Token()
		if err != nil {
			break
		}
		_ = enc.EncodeToken(xml.CopyToken(tok))

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if !childSeen {
				childSeen = true
				st.ChildName = t.Name.Local
				st.ChildNS = t.Name.Space
			}
			if st.Name == "message" && t.Name.Local == "body" {
				st.HasBody = true
			}
		case xml.EndElement:
			depth--
		}
	}
	_ = enc.Flush()
	st.Raw = raw.Bytes()
	return st
}
