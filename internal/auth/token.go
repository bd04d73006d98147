package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// VideoGrant carries the room permissions embedded in an access token
type VideoGrant struct {
	Room       string `json:"room,omitempty"`
	RoomJoin   bool   `json:"roomJoin,omitempty"`
	RoomAdmin  bool   `json:"roomAdmin,omitempty"`
	RoomCreate bool   `json:"roomCreate,omitempty"`
}

// roomClaims is the access token claim set expected by the call transport
type roomClaims struct {
	jwt.RegisteredClaims
	Name  string     `json:"name,omitempty"`
	Video VideoGrant `json:"video"`
}

// Minter creates signed room access tokens from the transport API
// key pair
type Minter struct {
	apiKey    string
	apiSecret string
}

// NewMinter creates a token minter. Missing credentials are a
// configuration error fatal to session setup.
func NewMinter(apiKey, apiSecret string) (*Minter, error) {
	if apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("LIVEKIT_API_KEY and LIVEKIT_API_SECRET must be set")
	}
	return &Minter{apiKey: apiKey, apiSecret: apiSecret}, nil
}

// RoomToken mints an access token granting the agent join, admin, and
// create permissions for the given room. Admin is required to read
// room metadata.
func (m *Minter) RoomToken(room, identity string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := roomClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.apiKey,
			Subject:   identity,
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Name: "AI Agent",
		Video: VideoGrant{
			Room:       room,
			RoomJoin:   true,
			RoomAdmin:  true,
			RoomCreate: true,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.apiSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign room token: %w", err)
	}
	return signed, nil
}

// VerifyRoomToken parses and validates a token minted with the same
// key pair, returning the granted room and identity
func (m *Minter) VerifyRoomToken(tokenString string) (room, identity string, err error) {
	claims := &roomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(m.apiSecret), nil
	})
	if err != nil {
		return "", "", fmt.Errorf("invalid room token: %w", err)
	}
	if !token.Valid {
		return "", "", fmt.Errorf("invalid room token")
	}
	return claims.Video.Room, claims.Subject, nil
}
