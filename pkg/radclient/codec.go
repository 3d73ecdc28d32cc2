package radclient

import (
	"fmt"

	"github.com/vitalvas/radqueue/pkg/crypto"
	"github.com/vitalvas/radqueue/pkg/packet"
)

// The scheduler never builds a packet.Packet of its own: callers hand it
// a fully RFC 2865-encoded buffer (built with pkg/packet or by hand),
// and the scheduler limits itself to four codec operations: attribute
// append (NAS-Identifier only), sanity check, sign, and verify.
// Everything else about packet contents is the caller's business.

// attachNASIdentifier appends a NAS-Identifier attribute to an
// Access-Request buffer if id is non-empty and the buffer does not
// already carry one. Non-Access-Request codes are returned unmodified.
func attachNASIdentifier(request []byte, id []byte) ([]byte, error) {
	if len(id) == 0 || len(request) < 1 || packet.Code(request[0]) != packet.CodeAccessRequest {
		return request, nil
	}

	pkt, err := packet.Decode(request)
	if err != nil {
		return nil, fmt.Errorf("radclient: decode request for NAS-Identifier attach: %w", err)
	}

	if _, exists := pkt.GetAttribute(packet.AttrNASIdentifier); exists {
		return request, nil
	}

	pkt.AddAttribute(packet.NewAttribute(packet.AttrNASIdentifier, id))

	encoded, err := pkt.Encode()
	if err != nil {
		return nil, fmt.Errorf("radclient: re-encode request after NAS-Identifier attach: %w", err)
	}
	return encoded, nil
}

// checkShape runs the codec sanity check the receive path needs before
// any identifier lookup: header length, declared length, and a full
// attribute walk. packet.Decode already does exactly this.
func checkShape(data []byte) error {
	_, err := packet.Decode(data)
	return err
}

// sign installs a Request Authenticator into request and returns the
// wire bytes to transmit plus the Request Authenticator that must be
// retained for response verification. It runs once per query per server;
// retransmission resends the returned bytes verbatim (RFC 2865 §2.5).
func sign(request []byte, secret []byte) ([]byte, crypto.Authenticator, error) {
	if len(request) < 20 {
		return nil, crypto.Authenticator{}, fmt.Errorf("radclient: request too short to sign: %d bytes", len(request))
	}

	out := make([]byte, len(request))
	copy(out, request)

	code := packet.Code(out[0])

	var reqAuth crypto.Authenticator
	if code == packet.CodeAccessRequest {
		var err error
		reqAuth, err = crypto.GenerateRequestAuthenticator()
		if err != nil {
			return nil, crypto.Authenticator{}, fmt.Errorf("radclient: generate request authenticator: %w", err)
		}
		copy(out[4:20], reqAuth[:])
	} else {
		// Accounting-Request, CoA-Request, Disconnect-Request: the
		// Request Authenticator is itself an MD5 over the packet with a
		// zeroed authenticator field (RFC 2866 §4.1 / RFC 5176 §3).
		for i := 4; i < 20; i++ {
			out[i] = 0
		}
		length := uint16(len(out))
		reqAuth = crypto.CalculateRequestAuthenticator(uint8(code), out[1], length, out[20:], secret)
		copy(out[4:20], reqAuth[:])
	}

	if crypto.HasMessageAuthenticator(out) {
		if err := crypto.UpdateMessageAuthenticator(out, secret); err != nil {
			return nil, crypto.Authenticator{}, fmt.Errorf("radclient: update message authenticator: %w", err)
		}
	}

	return out, reqAuth, nil
}

// verifyResponse validates a received datagram against the Request
// Authenticator retained from sign. Message-
// Authenticator, when present in the response, is checked too (RFC 2869
// §5.14): it is computed over the response with the *request's*
// authenticator substituted into the header.
func verifyResponse(response []byte, requestAuth crypto.Authenticator, secret []byte) bool {
	if err := checkShape(response); err != nil {
		return false
	}

	code := response[0]
	identifier := response[1]
	length := uint16(response[2])<<8 | uint16(response[3])

	var receivedAuth crypto.Authenticator
	copy(receivedAuth[:], response[4:20])

	if !crypto.ValidateResponseAuthenticator(code, identifier, length, requestAuth, response[20:], receivedAuth, secret) {
		return false
	}

	if crypto.HasMessageAuthenticator(response) {
		msgAuth, err := crypto.ExtractMessageAuthenticator(response)
		if err != nil {
			return false
		}

		calcBuf := make([]byte, len(response))
		copy(calcBuf, response)
		copy(calcBuf[4:20], requestAuth[:])

		valid, err := crypto.ValidateMessageAuthenticator(calcBuf, secret, msgAuth)
		if err != nil || !valid {
			return false
		}
	}

	return true
}
