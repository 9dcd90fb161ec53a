package gid

import (
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// SessionTag is the three-character prefix rendered in front of every
// SessionID, the same "tag_base62uuid" shape the teacher used for its whole
// family of entity IDs.
const SessionTag = "ses"

type tagToIDConstructor func(uuid.UUID) ID

var idConstructorMap = map[string]tagToIDConstructor{
	SessionTag: func(id uuid.UUID) ID { return NewSessionID(id) },
}

func parseIDParts(str string) (string, uuid.UUID, error) {
	parts := strings.Split(str, "_")
	if len(parts) != 2 {
		return "", uuid.Nil, errors.New("invalid GID structure")
	}
	idPart, err := decodeUUID(parts[1])
	if err != nil {
		return "", uuid.Nil, errors.Wrap(err, "invalid unique id part of GID")
	}
	return parts[0], idPart, nil
}

// ParseID parses a rendered GID of the form "tag_base62uuid" back into its
// typed ID, dispatching on the tag.
func ParseID(str string) (ID, error) {
	tagName, uniquePart, err := parseIDParts(str)
	if err != nil {
		return nil, err
	}

	constructor := idConstructorMap[tagName]
	if constructor == nil {
		return nil, errors.Errorf("no known gid for tag %s", tagName)
	}

	return constructor(uniquePart), nil
}

// ParseIDAs parses str and assigns the result to destID, which must be a
// pointer to the concrete ID type str was rendered from.
func ParseIDAs(str string, destID interface{}) error {
	id, err := ParseID(str)
	if err != nil {
		return errors.Wrapf(err, "parse ID failed: %s", str)
	}
	return assignTo(id, destID)
}

// SessionID identifies one Sniffer run. It is attached to every log line
// emitted by the Capture, Decode/Aggregate, and Reporter tasks so a reader
// can correlate their output for a single attach/run/save_report cycle; it
// is never part of flow identity.
type SessionID struct {
	baseID
}

func (SessionID) GetType() string {
	return SessionTag
}

func (id SessionID) String() string {
	return String(id)
}

func NewSessionID(id uuid.UUID) SessionID {
	return SessionID{baseID(id)}
}

// GenerateSessionID mints a fresh, random SessionID.
func GenerateSessionID() SessionID {
	return NewSessionID(uuid.New())
}

func (id SessionID) MarshalText() ([]byte, error) {
	return toText(id)
}

func (id *SessionID) UnmarshalText(data []byte) error {
	return fromText(id, data)
}
