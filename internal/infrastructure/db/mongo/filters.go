package mongo

import (
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/clientespro/client-manager/internal/core/domain"
	"github.com/clientespro/client-manager/internal/core/ports"
)

func activeAdminFilter() bson.M {
	return bson.M{"role": string(domain.RoleAdmin), "active": true}
}

func userPatchSet(p ports.UserPatch, now time.Time) bson.M {
	set := bson.M{"updated_at": now}
	if p.Email != nil {
		set["email"] = *p.Email
	}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Phone != nil {
		set["phone"] = *p.Phone
	}
	if p.Role != nil {
		set["role"] = string(*p.Role)
	}
	if p.Active != nil {
		set["active"] = *p.Active
	}
	return set
}

// clientListFilter translates a listing filter. Text search is a
// case-insensitive substring match with the query taken literally.
func clientListFilter(f ports.ClientFilter) bson.M {
	filter := bson.M{}
	if f.OwnerID != "" {
		filter["owner_id"] = f.OwnerID
	}
	if f.Status != "" {
		filter["status"] = string(f.Status)
	}
	if f.Priority != "" {
		filter["priority"] = string(f.Priority)
	}

	var and []bson.M
	if f.Query != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(f.Query), Options: "i"}
		and = append(and, bson.M{"$or": []bson.M{
			{"first_name": re},
			{"last_name": re},
			{"email": re},
			{"company": re},
		}})
	}
	if f.ContactBefore != nil {
		// nil matches both a null and a missing field
		and = append(and, bson.M{"$or": []bson.M{
			{"last_contact_at": nil},
			{"last_contact_at": bson.M{"$lt": *f.ContactBefore}},
		}})
	}
	if len(and) > 0 {
		filter["$and"] = and
	}
	return filter
}

func clientCountFilter(f ports.ClientCountFilter) bson.M {
	filter := bson.M{}
	if f.OwnerID != "" {
		filter["owner_id"] = f.OwnerID
	}
	created := bson.M{}
	if !f.CreatedFrom.IsZero() {
		created["$gte"] = f.CreatedFrom
	}
	if !f.CreatedBefore.IsZero() {
		created["$lt"] = f.CreatedBefore
	}
	if len(created) > 0 {
		filter["created_at"] = created
	}
	return filter
}

func clientPatchSet(p ports.ClientPatch, now time.Time) bson.M {
	set := bson.M{"updated_at": now}
	str := map[string]*string{
		"first_name": p.FirstName,
		"last_name":  p.LastName,
		"email":      p.Email,
		"phone":      p.Phone,
		"address":    p.Address,
		"company":    p.Company,
		"notes":      p.Notes,
	}
	for field, v := range str {
		if v != nil {
			set[field] = *v
		}
	}
	if p.Status != nil {
		set["status"] = string(*p.Status)
	}
	if p.Priority != nil {
		set["priority"] = string(*p.Priority)
	}
	if p.Tags != nil {
		tags := *p.Tags
		if tags == nil {
			tags = []string{}
		}
		set["tags"] = tags
	}
	if p.LastContactAt != nil {
		set["last_contact_at"] = *p.LastContactAt
	}
	return set
}

// groupPipeline counts the clients of ownerID (all owners when empty) per
// distinct value of field.
func groupPipeline(ownerID string, field ports.ClientGroupField) bson.A {
	match := bson.M{}
	if ownerID != "" {
		match["owner_id"] = ownerID
	}
	return bson.A{
		bson.M{"$match": match},
		bson.M{"$group": bson.M{"_id": "$" + string(field), "count": bson.M{"$sum": 1}}},
	}
}
