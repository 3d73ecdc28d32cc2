package crypto

import (
	"crypto/hmac"
	"crypto/md5"
	"fmt"
)

// MessageAuthenticatorLength is the value size of the
// Message-Authenticator attribute (RFC 2869 §5.14).
const MessageAuthenticatorLength = 16

const (
	attrMessageAuthenticator = 80
	headerLength             = 20
)

// messageAuthenticatorStart walks the attribute list and returns the
// offset of the Message-Authenticator attribute's type octet, or -1.
// Walks stop at the first malformed attribute.
func messageAuthenticatorStart(pkt []byte) int {
	if len(pkt) < headerLength {
		return -1
	}

	off := headerLength
	for off+2 <= len(pkt) {
		attrType := pkt[off]
		attrLen := int(pkt[off+1])
		if attrLen < 2 || off+attrLen > len(pkt) {
			return -1
		}
		if attrType == attrMessageAuthenticator {
			return off
		}
		off += attrLen
	}
	return -1
}

// HasMessageAuthenticator reports whether pkt carries a
// Message-Authenticator attribute.
func HasMessageAuthenticator(pkt []byte) bool {
	return messageAuthenticatorStart(pkt) != -1
}

// ExtractMessageAuthenticator returns the attribute's 16-octet value.
func ExtractMessageAuthenticator(pkt []byte) ([MessageAuthenticatorLength]byte, error) {
	var out [MessageAuthenticatorLength]byte

	start := messageAuthenticatorStart(pkt)
	if start == -1 {
		return out, fmt.Errorf("no Message-Authenticator attribute in packet")
	}
	valueOff := start + 2
	if valueOff+MessageAuthenticatorLength > len(pkt) {
		return out, fmt.Errorf("truncated Message-Authenticator attribute")
	}

	copy(out[:], pkt[valueOff:valueOff+MessageAuthenticatorLength])
	return out, nil
}

// CalculateMessageAuthenticator computes HMAC-MD5(secret, pkt) with the
// Message-Authenticator value field zeroed, per RFC 2869 §5.14.
func CalculateMessageAuthenticator(pkt, secret []byte) ([MessageAuthenticatorLength]byte, error) {
	var out [MessageAuthenticatorLength]byte

	if len(pkt) < headerLength {
		return out, fmt.Errorf("packet too short: %d bytes", len(pkt))
	}

	calc := make([]byte, len(pkt))
	copy(calc, pkt)
	if start := messageAuthenticatorStart(calc); start != -1 {
		for i := 0; i < MessageAuthenticatorLength; i++ {
			calc[start+2+i] = 0
		}
	}

	mac := hmac.New(md5.New, secret)
	mac.Write(calc)
	copy(out[:], mac.Sum(nil))
	return out, nil
}

// UpdateMessageAuthenticator recomputes and overwrites the value of an
// existing Message-Authenticator attribute in place. The packet's
// Request Authenticator must already hold its final value.
func UpdateMessageAuthenticator(pkt, secret []byte) error {
	start := messageAuthenticatorStart(pkt)
	if start == -1 {
		return fmt.Errorf("no Message-Authenticator attribute in packet")
	}

	value, err := CalculateMessageAuthenticator(pkt, secret)
	if err != nil {
		return err
	}

	copy(pkt[start+2:], value[:])
	return nil
}

// AddMessageAuthenticator appends a Message-Authenticator attribute,
// fixes up the header length, and fills in the computed value. Fails if
// the packet already carries one; use UpdateMessageAuthenticator then.
func AddMessageAuthenticator(pkt, secret []byte) ([]byte, error) {
	if HasMessageAuthenticator(pkt) {
		return nil, fmt.Errorf("packet already carries a Message-Authenticator")
	}

	out := make([]byte, len(pkt), len(pkt)+2+MessageAuthenticatorLength)
	copy(out, pkt)
	out = append(out, attrMessageAuthenticator, 2+MessageAuthenticatorLength)
	out = append(out, make([]byte, MessageAuthenticatorLength)...)

	out[2] = byte(len(out) >> 8)
	out[3] = byte(len(out))

	if err := UpdateMessageAuthenticator(out, secret); err != nil {
		return nil, err
	}
	return out, nil
}

// ValidateMessageAuthenticator checks a received value against the one
// computed over pkt.
func ValidateMessageAuthenticator(pkt, secret []byte, received [MessageAuthenticatorLength]byte) (bool, error) {
	expected, err := CalculateMessageAuthenticator(pkt, secret)
	if err != nil {
		return false, err
	}
	return hmac.Equal(expected[:], received[:]), nil
}
