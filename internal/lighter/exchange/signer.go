package exchange

import (
	"crypto/ecdsa"
	"encoding/binary"
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer authenticates signing requests towards the venue: the canonical
// request bytes are hashed together with the nonce and the identity
// indices, and the digest is ECDSA-signed with the API private key.
type Signer struct {
	privKey *ecdsa.PrivateKey
	address common.Address
}

func NewSigner(hexKey string) (*Signer, error) {
	clean := strings.TrimSpace(hexKey)
	if clean == "" {
		return nil, errors.New("private key is required")
	}
	clean = strings.TrimPrefix(clean, "0x")
	key, err := crypto.HexToECDSA(clean)
	if err != nil {
		return nil, err
	}
	addr := crypto.PubkeyToAddress(key.PublicKey)
	return &Signer{privKey: key, address: addr}, nil
}

func (s *Signer) Address() common.Address {
	return s.address
}

// SignRequest signs the canonical payload bound to nonce and identity.
func (s *Signer) SignRequest(payload []byte, nonce uint64, accountIndex, apiKeyIndex int) (string, error) {
	digest := requestDigest(payload, nonce, accountIndex, apiKeyIndex)
	sig, err := crypto.Sign(digest, s.privKey)
	if err != nil {
		return "", err
	}
	return hexutil.Encode(sig), nil
}

func requestDigest(payload []byte, nonce uint64, accountIndex, apiKeyIndex int) []byte {
	var tail [16]byte
	binary.BigEndian.PutUint64(tail[0:8], nonce)
	binary.BigEndian.PutUint32(tail[8:12], uint32(accountIndex))
	binary.BigEndian.PutUint32(tail[12:16], uint32(apiKeyIndex))
	return crypto.Keccak256(payload, tail[:])
}
