package provider

import (
	"bytes"
	"fmt"

	"github.com/tink-crypto/tink-go/v2/aead"
	"github.com/tink-crypto/tink-go/v2/insecurecleartextkeyset"
	"github.com/tink-crypto/tink-go/v2/keyset"
	aes_gcmpb "github.com/tink-crypto/tink-go/v2/proto/aes_gcm_go_proto"
	tinkpb "github.com/tink-crypto/tink-go/v2/proto/tink_go_proto"
	"github.com/tink-crypto/tink-go/v2/tink"

	"google.golang.org/protobuf/proto"
)

// contentKeySize is the size of the ephemeral content key and of all keys
// derived for wrapping it.
const contentKeySize = 32

// newAEAD creates a Tink AES-256-GCM primitive from raw key bytes.
// The key is placed in a single-key keyset with a RAW output prefix so
// ciphertexts carry no Tink framing.
func newAEAD(key []byte) (tink.AEAD, error) {
	if len(key) != contentKeySize {
		return nil, fmt.Errorf("%w: AEAD key is %d bytes, want %d", ErrInvalidInput, len(key), contentKeySize)
	}

	aesGCMKey := &aes_gcmpb.AesGcmKey{
		Version:  0,
		KeyValue: key,
	}

	serializedKey, err := proto.Marshal(aesGCMKey)
	if err != nil {
		return nil, fmt.Errorf("serializing AesGcmKey: %w", err)
	}

	keyData := &tinkpb.KeyData{
		TypeUrl:         "type.googleapis.com/google.crypto.tink.AesGcmKey",
		Value:           serializedKey,
		KeyMaterialType: tinkpb.KeyData_SYMMETRIC,
	}

	keySet := &tinkpb.Keyset{
		PrimaryKeyId: 1,
		Key: []*tinkpb.Keyset_Key{
			{
				KeyData:          keyData,
				Status:           tinkpb.KeyStatusType_ENABLED,
				KeyId:            1,
				OutputPrefixType: tinkpb.OutputPrefixType_RAW,
			},
		},
	}

	serializedKeyset, err := proto.Marshal(keySet)
	if err != nil {
		return nil, fmt.Errorf("serializing keyset: %w", err)
	}

	keySetHandle, err := insecurecleartextkeyset.Read(
		keyset.NewBinaryReader(bytes.NewReader(serializedKeyset)))
	if err != nil {
		return nil, fmt.Errorf("creating keyset handle: %w", err)
	}

	primitive, err := aead.New(keySetHandle)
	if err != nil {
		return nil, fmt.Errorf("creating AEAD: %w", err)
	}

	return primitive, nil
}
