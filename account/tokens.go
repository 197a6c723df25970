package account

import (
	"aquaflow/bizerror"
	"aquaflow/domain"
	"aquaflow/idgen"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

// TokenMaxAge is enforced server-side; the emails promise ten minutes.
const TokenMaxAge = 10 * time.Minute

var tokenIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

// generateTokenCode returns the 6-digit code users type in from the email.
func generateTokenCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		panic(err)
	}
	return fmt.Sprintf("%06d", n.Int64())
}

func createToken(db *gorm.DB, userId types.ID) (*domain.Token, error) {
	t := domain.Token{ID: idgen.NextID(tokenIdWorker), Token: generateTokenCode(),
		UserID: userId, CreateTime: types.CurrentTimestamp()}
	if err := db.Create(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// findValidToken rejects unknown and aged-out tokens alike; an expired row
// is removed lazily on the way out.
func findValidToken(db *gorm.DB, token string) (*domain.Token, error) {
	t := domain.Token{}
	if err := db.Where(&domain.Token{Token: token}).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.ErrInvalidToken
		}
		return nil, err
	}
	if time.Since(t.CreateTime.Time()) > TokenMaxAge {
		if err := db.Delete(domain.Token{}, "id = ?", t.ID).Error; err != nil {
			return nil, err
		}
		return nil, bizerror.ErrInvalidToken
	}
	return &t, nil
}

// consumeToken is the one-time use path: the row is destroyed on success.
func consumeToken(db *gorm.DB, token string) (*domain.Token, error) {
	t, err := findValidToken(db, token)
	if err != nil {
		return nil, err
	}
	if err := db.Delete(domain.Token{}, "id = ?", t.ID).Error; err != nil {
		return nil, err
	}
	return t, nil
}
