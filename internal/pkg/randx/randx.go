/*
Package randx provides functions for generating cryptographically secure
random identifiers.

It generates the fixed-length room codes handed out by the /create command
and the durable device identifiers used by clients.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const (
	// RoomCodeChars is the character set of room codes (A-Z, 0-9), chosen so
	// codes are easy to read aloud and paste.
	RoomCodeChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// RoomCodeLength is the fixed length of a generated room code.
	RoomCodeLength = 6
)

// RoomCode generates a room code of RoomCodeLength characters using
// crypto/rand.
func RoomCode() (string, error) {
	charsetLen := big.NewInt(int64(len(RoomCodeChars)))
	result := make([]byte, RoomCodeLength)

	for i := 0; i < RoomCodeLength; i++ {
		num, err := rand.Int(rand.Reader, charsetLen)
		if err != nil {
			return "", fmt.Errorf("failed to generate random number for room code: %v", err)
		}

		result[i] = RoomCodeChars[num.Int64()]
	}

	return string(result), nil
}

// DeviceID generates a UUID v4 string serving as a durable opaque device
// identifier.
func DeviceID() string {
	return uuid.New().String()
}

// IsValidRoomCode checks length and alphabet of a room code.
func IsValidRoomCode(code string) bool {
	if len(code) != RoomCodeLength {
		return false
	}

	for _, char := range code {
		if !strings.ContainsRune(RoomCodeChars, char) {
			return false
		}
	}

	return true
}
