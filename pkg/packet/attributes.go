package packet

import (
	"sync"

	"github.com/vitalvas/radqueue/pkg/dictionary"
)

var (
	defaultDict *dictionary.Dictionary
	dictOnce    sync.Once
)

// DefaultDictionary returns the shared dictionary carrying the standard
// RFC attribute set.
func DefaultDictionary() *dictionary.Dictionary {
	dictOnce.Do(func() {
		defaultDict, _ = dictionary.NewDefault()
	})
	return defaultDict
}

func attrType(name string) uint8 {
	t, err := DefaultDictionary().GetAttributeTypeByName(name)
	if err != nil {
		return 0
	}
	return t
}

// Wire types for the attributes this module and its tools touch,
// resolved through the dictionary so the two sources cannot drift.
var (
	AttrUserName             = attrType("User-Name")             // 1
	AttrUserPassword         = attrType("User-Password")         // 2
	AttrNASIPAddress         = attrType("NAS-IP-Address")        // 4
	AttrNASPort              = attrType("NAS-Port")              // 5
	AttrServiceType          = attrType("Service-Type")          // 6
	AttrFramedIPAddress      = attrType("Framed-IP-Address")     // 8
	AttrReplyMessage         = attrType("Reply-Message")         // 18
	AttrState                = attrType("State")                 // 24
	AttrClass                = attrType("Class")                 // 25
	AttrVendorSpecific       = attrType("Vendor-Specific")       // 26
	AttrSessionTimeout       = attrType("Session-Timeout")       // 27
	AttrCalledStationID      = attrType("Called-Station-Id")     // 30
	AttrCallingStationID     = attrType("Calling-Station-Id")    // 31
	AttrNASIdentifier        = attrType("NAS-Identifier")        // 32
	AttrProxyState           = attrType("Proxy-State")           // 33
	AttrAcctStatusType       = attrType("Acct-Status-Type")      // 40
	AttrAcctSessionID        = attrType("Acct-Session-Id")       // 44
	AttrAcctSessionTime      = attrType("Acct-Session-Time")     // 46
	AttrNASPortType          = attrType("NAS-Port-Type")         // 61
	AttrEAPMessage           = attrType("EAP-Message")           // 79
	AttrMessageAuthenticator = attrType("Message-Authenticator") // 80
)
