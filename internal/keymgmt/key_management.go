package keymgmt

import (
	"context"
	"fmt"
	"strings"
	"time"

	kms "cloud.google.com/go/kms/apiv1"
	"cloud.google.com/go/kms/apiv1/kmspb"
	"github.com/google/uuid"
	"github.com/jpillora/backoff"
	"github.com/onflow/flow-go-sdk"
	"github.com/onflow/flow-go-sdk/crypto"
	"github.com/onflow/flow-go-sdk/crypto/cloudkms"
	"github.com/rs/zerolog/log"
)

const keyIdPrefix = "pokerzk-custodial-wallet-key"

type PrivateKey struct {
	Index    int                       `json:"index"`
	Type     string                    `json:"type"`
	Value    string                    `json:"-"`
	SignAlgo crypto.SignatureAlgorithm `json:"-"`
	HashAlgo crypto.HashAlgorithm      `json:"-"`
}

// KmsKeys creates and uses wallet keys held in one Google KMS key ring.
type KmsKeys struct {
	ProjectId  string
	LocationId string
	KeyRingId  string
}

func (k KmsKeys) keyRing() string {
	return fmt.Sprintf("projects/%s/locations/%s/keyRings/%s", k.ProjectId, k.LocationId, k.KeyRingId)
}

func (k KmsKeys) GenerateAsymmetricKey(ctx context.Context, keyIndex, weight int) (*flow.AccountKey, *PrivateKey, error) {
	key, err := createAsymmetricKey(ctx, k.keyRing(), fmt.Sprintf("%s-%s", keyIdPrefix, uuid.New().String()))
	if err != nil {
		return nil, nil, err
	}

	client, err := cloudkms.NewClient(ctx)
	if err != nil {
		return nil, nil, err
	}

	pub, h, s, err := GetPublicKey(ctx, client, key)
	if err != nil {
		log.Error().Err(err).Msg(fmt.Sprintf("failed to get public key for Google KMS key, keyId: %s", key.KeyID))
		return nil, nil, err
	}

	f := flow.NewAccountKey().
		SetPublicKey(*pub).
		SetHashAlgo(*h).
		SetWeight(weight)
	f.Index = keyIndex

	p := &PrivateKey{
		Index:    keyIndex,
		Type:     "google_kms",
		Value:    key.ResourceID(),
		SignAlgo: *s,
		HashAlgo: *h,
	}

	return f, p, nil
}

// SignerForKey returns a signer backed by the KMS key version resourceId.
// The private key never leaves KMS.
func (k KmsKeys) SignerForKey(ctx context.Context, resourceId string) (crypto.Signer, error) {
	accountKMSKey, err := cloudkms.KeyFromResourceID(resourceId)
	if err != nil {
		return nil, err
	}

	kmsClient, err := cloudkms.NewClient(ctx)
	if err != nil {
		return nil, err
	}

	return kmsClient.SignerForKey(ctx, accountKMSKey)
}

func GetPublicKey(ctx context.Context, kmsClient *cloudkms.Client, kmsKey *cloudkms.Key) (*crypto.PublicKey, *crypto.HashAlgorithm, *crypto.SignatureAlgorithm, error) {
	b := &backoff.Backoff{
		Min:    100 * time.Millisecond,
		Max:    time.Minute,
		Factor: 5,
		Jitter: true,
	}

	deadline := time.Now().Add(60 * time.Second)

	log.Trace().Msg(fmt.Sprintf("Getting public key for KMS key, keyId: %s", kmsKey.KeyID))

	for {
		publicKey, hashAlgo, err := kmsClient.GetPublicKey(ctx, *kmsKey)
		if publicKey != nil {
			signAlgo := publicKey.Algorithm()
			return &publicKey, &hashAlgo, &signAlgo, nil
		}
		if err != nil && !strings.Contains(err.Error(), "KEY_PENDING_GENERATION") {
			return nil, nil, nil, err
		}

		log.Trace().Msg("KMS key is pending creation, will retry")

		if time.Now().After(deadline) {
			err = fmt.Errorf("timeout while trying to get public key")
			log.Error().Err(err).Str("keyId", kmsKey.KeyID).Msg("KMS key never became available")
			return nil, nil, nil, err
		}

		select {
		case <-ctx.Done():
			return nil, nil, nil, ctx.Err()
		case <-time.After(b.Duration()):
		}
	}
}

// createAsymmetricKey creates a P-256 signing key and returns its first
// version as a cloudkms.Key.
func createAsymmetricKey(ctx context.Context, parent string, id string) (*cloudkms.Key, error) {
	client, err := kms.NewKeyManagementClient(ctx)
	if err != nil {
		return nil, err
	}

	defer client.Close()

	r := &kmspb.CreateCryptoKeyRequest{
		Parent:      parent,
		CryptoKeyId: id,
		CryptoKey: &kmspb.CryptoKey{
			Purpose: kmspb.CryptoKey_ASYMMETRIC_SIGN,
			VersionTemplate: &kmspb.CryptoKeyVersionTemplate{
				Algorithm: kmspb.CryptoKeyVersion_EC_SIGN_P256_SHA256,
			},
			Labels: map[string]string{
				"service": "pokerzk-api",
			},
		},
	}

	gk, err := client.CreateCryptoKey(ctx, r)
	if err != nil {
		return nil, err
	}

	// KeyFromResourceID needs a key version
	k, err := cloudkms.KeyFromResourceID(fmt.Sprintf("%s/cryptoKeyVersions/1", gk.Name))
	if err != nil {
		return nil, err
	}

	if !strings.HasPrefix(k.ResourceID(), gk.Name) {
		return nil, fmt.Errorf("created Google KMS key name %s does not match %s", k.ResourceID(), gk.Name)
	}

	return &k, nil
}
