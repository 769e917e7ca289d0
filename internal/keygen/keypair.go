package keygen

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base32"
	"fmt"
)

// strkey version bytes: accounts encode to 'G...', seeds to 'S...'.
const (
	versionAccount byte = 6 << 3
	versionSeed    byte = 18 << 3
)

var b32 = base32.StdEncoding.WithPadding(base32.NoPadding)

// Keypair holds a newly generated account address and its seed. The seed is a
// custodial secret and must never be logged.
type Keypair struct {
	Address string
	Seed    string
}

// Generator produces fresh keypairs for a currency's network.
type Generator interface {
	NewKeypair(currency string) (Keypair, error)
}

// Ed25519Generator creates Stellar keypairs. Every supported crypto currency
// is carried on a Stellar account, so the currency argument only selects the
// wallet slot, not the curve.
type Ed25519Generator struct{}

// NewKeypair generates a random ed25519 keypair and strkey-encodes it.
func (Ed25519Generator) NewKeypair(string) (Keypair, error) {
	public, private, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return Keypair{}, fmt.Errorf("generate keypair: %w", err)
	}
	return Keypair{
		Address: encodeStrkey(versionAccount, public),
		Seed:    encodeStrkey(versionSeed, private.Seed()),
	}, nil
}

// encodeStrkey renders version||data||crc16 as unpadded base32, the Stellar
// address wire format (56 characters for 32-byte payloads).
func encodeStrkey(version byte, data []byte) string {
	payload := make([]byte, 0, len(data)+3)
	payload = append(payload, version)
	payload = append(payload, data...)
	sum := crc16(payload)
	payload = append(payload, byte(sum), byte(sum>>8))
	return b32.EncodeToString(payload)
}

// crc16 implements CRC16-XModem (polynomial 0x1021, zero initial value).
func crc16(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
