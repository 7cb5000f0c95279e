// Package protocol implements the fixed-layout binary messages exchanged
// over UDP (discovery) and TCP (gameplay).
//
// Every packet opens with a 4-byte magic cookie and a 1-byte type tag. The
// four message kinds are fixed-size; anything that fails cookie, type or
// length validation is a malformed packet. UDP consumers drop malformed
// packets silently; TCP consumers treat them as fatal to the session.
package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/gayagur/blackjack-hackathon/engine"
)

// MagicCookie opens every valid packet, big-endian.
const MagicCookie uint32 = 0xABCDDCBA

// Message type tags.
const (
	MsgOffer   uint8 = 0x02
	MsgRequest uint8 = 0x03
	MsgPayload uint8 = 0x04
)

// Fixed packet sizes, cookie and type included.
const (
	OfferSize         = 39
	RequestSize       = 38
	PayloadClientSize = 10
	PayloadServerSize = 9

	nameSize     = 32
	decisionSize = 5
)

// Decision tokens on the wire. Both are exactly 5 bytes with no delimiter;
// "Hittt" is padded to match "Stand" so the payload stays fixed-width.
const (
	TokenHit   = "Hittt"
	TokenStand = "Stand"
)

// ErrMalformed is the root of every decode failure. Callers match it with
// errors.Is; the wrapped message carries the specific field that failed.
var ErrMalformed = errors.New("malformed packet")

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))
}

// Offer is the UDP broadcast advertising a server's TCP endpoint and name.
type Offer struct {
	TCPPort    uint16
	ServerName string
}

// Request is the TCP handshake asking to play a number of rounds.
type Request struct {
	Rounds     uint8 // 1..255
	ClientName string
}

// padName truncates s to 32 bytes of UTF-8 and zero-pads the remainder.
func padName(s string) [nameSize]byte {
	var out [nameSize]byte
	copy(out[:], s)
	return out
}

// trimName strips trailing NULs (and trailing spaces some peers pad with).
func trimName(b []byte) string {
	return string(bytes.TrimRight(b, "\x00 "))
}

// EncodeOffer packs an Offer into its 39-byte wire form.
func EncodeOffer(o Offer) []byte {
	buf := make([]byte, OfferSize)
	binary.BigEndian.PutUint32(buf[0:4], MagicCookie)
	buf[4] = MsgOffer
	binary.BigEndian.PutUint16(buf[5:7], o.TCPPort)
	name := padName(o.ServerName)
	copy(buf[7:], name[:])
	return buf
}

// DecodeOffer validates and unpacks a 39-byte Offer.
func DecodeOffer(data []byte) (Offer, error) {
	if len(data) != OfferSize {
		return Offer{}, malformed("offer length %d, want %d", len(data), OfferSize)
	}
	if err := checkHeader(data, MsgOffer); err != nil {
		return Offer{}, err
	}
	return Offer{
		TCPPort:    binary.BigEndian.Uint16(data[5:7]),
		ServerName: trimName(data[7:]),
	}, nil
}

// EncodeRequest packs a Request into its 38-byte wire form. Rounds must be
// in 1..255.
func EncodeRequest(r Request) ([]byte, error) {
	if r.Rounds < 1 {
		return nil, fmt.Errorf("rounds must be between 1 and 255")
	}
	buf := make([]byte, RequestSize)
	binary.BigEndian.PutUint32(buf[0:4], MagicCookie)
	buf[4] = MsgRequest
	buf[5] = r.Rounds
	name := padName(r.ClientName)
	copy(buf[6:], name[:])
	return buf, nil
}

// DecodeRequest validates and unpacks a 38-byte Request.
func DecodeRequest(data []byte) (Request, error) {
	if len(data) != RequestSize {
		return Request{}, malformed("request length %d, want %d", len(data), RequestSize)
	}
	if err := checkHeader(data, MsgRequest); err != nil {
		return Request{}, err
	}
	if data[5] < 1 {
		return Request{}, malformed("request rounds %d out of range", data[5])
	}
	return Request{
		Rounds:     data[5],
		ClientName: trimName(data[6:]),
	}, nil
}

// EncodePayloadClient packs a decision token into its 10-byte wire form.
// The token must be exactly TokenHit or TokenStand.
func EncodePayloadClient(token string) ([]byte, error) {
	if token != TokenHit && token != TokenStand {
		return nil, fmt.Errorf("decision must be %q or %q, got %q", TokenHit, TokenStand, token)
	}
	buf := make([]byte, PayloadClientSize)
	binary.BigEndian.PutUint32(buf[0:4], MagicCookie)
	buf[4] = MsgPayload
	copy(buf[5:], token)
	return buf, nil
}

// DecodePayloadClient validates a 10-byte client payload and returns the
// decision token.
func DecodePayloadClient(data []byte) (string, error) {
	if len(data) != PayloadClientSize {
		return "", malformed("client payload length %d, want %d", len(data), PayloadClientSize)
	}
	if err := checkHeader(data, MsgPayload); err != nil {
		return "", err
	}
	token := string(bytes.TrimRight(data[5:], "\x00"))
	if token != TokenHit && token != TokenStand {
		return "", malformed("unknown decision token %q", token)
	}
	return token, nil
}

// EncodePayloadServer packs a result code and card into the 9-byte server
// payload. Result codes are engine.Outcome values (0 not-over, 1 tie,
// 2 loss, 3 win).
func EncodePayloadServer(result engine.Outcome, card engine.Card) []byte {
	buf := make([]byte, PayloadServerSize)
	binary.BigEndian.PutUint32(buf[0:4], MagicCookie)
	buf[4] = MsgPayload
	buf[5] = uint8(result)
	binary.BigEndian.PutUint16(buf[6:8], uint16(card.Rank()))
	buf[8] = card.Suit()
	return buf
}

// DecodePayloadServer validates a 9-byte server payload and returns the
// result code and card.
func DecodePayloadServer(data []byte) (engine.Outcome, engine.Card, error) {
	if len(data) != PayloadServerSize {
		return 0, 0, malformed("server payload length %d, want %d", len(data), PayloadServerSize)
	}
	if err := checkHeader(data, MsgPayload); err != nil {
		return 0, 0, err
	}
	result := data[5]
	if result > uint8(engine.OutcomeWin) {
		return 0, 0, malformed("result code %d out of range", result)
	}
	rank := binary.BigEndian.Uint16(data[6:8])
	if rank < 1 || rank > 13 {
		return 0, 0, malformed("card rank %d out of range", rank)
	}
	suit := data[8]
	if suit > 3 {
		return 0, 0, malformed("card suit %d out of range", suit)
	}
	return engine.Outcome(result), engine.NewCard(suit, uint8(rank)), nil
}

func checkHeader(data []byte, wantType uint8) error {
	if cookie := binary.BigEndian.Uint32(data[0:4]); cookie != MagicCookie {
		return malformed("bad magic cookie %#x", cookie)
	}
	if data[4] != wantType {
		return malformed("message type %#x, want %#x", data[4], wantType)
	}
	return nil
}
