package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/clientespro/client-manager/internal/core/domain"
)

type userDocument struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty"`
	Email               string             `bson:"email"`
	Name                string             `bson:"name,omitempty"`
	Phone               string             `bson:"phone,omitempty"`
	PasswordHash        string             `bson:"password_hash"`
	Role                string             `bson:"role"`
	Active              bool               `bson:"active"`
	LastLoginAt         *time.Time         `bson:"last_login_at,omitempty"`
	ResetTokenHash      string             `bson:"reset_token_hash,omitempty"`
	ResetTokenExpiresAt *time.Time         `bson:"reset_token_expires_at,omitempty"`
	CreatedAt           time.Time          `bson:"created_at"`
	UpdatedAt           time.Time          `bson:"updated_at"`
}

func toUserDocument(u *domain.User) userDocument {
	doc := userDocument{
		Email:          u.Email,
		Name:           u.Name,
		Phone:          u.Phone,
		PasswordHash:   u.PasswordHash,
		Role:           string(u.Role),
		Active:         u.Active,
		LastLoginAt:    u.LastLoginAt,
		ResetTokenHash: u.ResetTokenHash,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
	if oid, ok := parseID(u.ID); ok {
		doc.ID = oid
	}
	if !u.ResetTokenExpiresAt.IsZero() {
		t := u.ResetTokenExpiresAt
		doc.ResetTokenExpiresAt = &t
	}
	return doc
}

func (d *userDocument) toDomain() *domain.User {
	u := &domain.User{
		ID:             d.ID.Hex(),
		Email:          d.Email,
		Name:           d.Name,
		Phone:          d.Phone,
		PasswordHash:   d.PasswordHash,
		Role:           domain.Role(d.Role),
		Active:         d.Active,
		LastLoginAt:    d.LastLoginAt,
		ResetTokenHash: d.ResetTokenHash,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
	if d.ResetTokenExpiresAt != nil {
		u.ResetTokenExpiresAt = *d.ResetTokenExpiresAt
	}
	return u
}

type clientDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	OwnerID       string             `bson:"owner_id"`
	FirstName     string             `bson:"first_name"`
	LastName      string             `bson:"last_name"`
	Email         string             `bson:"email"`
	Phone         string             `bson:"phone"`
	Address       string             `bson:"address"`
	Company       string             `bson:"company"`
	Notes         string             `bson:"notes"`
	Status        string             `bson:"status"`
	Priority      string             `bson:"priority"`
	Tags          []string           `bson:"tags"`
	LastContactAt *time.Time         `bson:"last_contact_at"`
	CreatedAt     time.Time          `bson:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at"`
}

func toClientDocument(c *domain.Client) clientDocument {
	doc := clientDocument{
		OwnerID:       c.OwnerID,
		FirstName:     c.FirstName,
		LastName:      c.LastName,
		Email:         c.Email,
		Phone:         c.Phone,
		Address:       c.Address,
		Company:       c.Company,
		Notes:         c.Notes,
		Status:        string(c.Status),
		Priority:      string(c.Priority),
		Tags:          c.Tags,
		LastContactAt: c.LastContactAt,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
	if doc.Tags == nil {
		doc.Tags = []string{}
	}
	if oid, ok := parseID(c.ID); ok {
		doc.ID = oid
	}
	return doc
}

func (d *clientDocument) toDomain() *domain.Client {
	c := &domain.Client{
		ID:            d.ID.Hex(),
		OwnerID:       d.OwnerID,
		FirstName:     d.FirstName,
		LastName:      d.LastName,
		Email:         d.Email,
		Phone:         d.Phone,
		Address:       d.Address,
		Company:       d.Company,
		Notes:         d.Notes,
		Status:        domain.ClientStatus(d.Status),
		Priority:      domain.ClientPriority(d.Priority),
		Tags:          d.Tags,
		LastContactAt: d.LastContactAt,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
	return c
}
