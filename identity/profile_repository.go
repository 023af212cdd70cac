package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PostgresProfiles struct{ pool *pgxpool.Pool }

func NewPostgresProfiles(pool *pgxpool.Pool) *PostgresProfiles {
	return &PostgresProfiles{pool: pool}
}

const profileColumns = `id, name, email, mobile, role, avatar, license_id, created_at`

func scanProfile(row pgx.Row) (Principal, error) {
	var p Principal
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Email,
		&p.Mobile,
		&p.Role,
		&p.Avatar,
		&p.LicenseID,
		&p.CreatedAt,
	)
	return p, err
}

func (r *PostgresProfiles) Create(ctx context.Context, p Principal) error {
	sql := `
			INSERT INTO turf.profiles(` + profileColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
		`

	_, err := r.pool.Exec(ctx, sql, p.ID, p.Name, p.Email, p.Mobile, p.Role, p.Avatar, p.LicenseID, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert profile: %w", err)
	}

	return nil
}

func (r *PostgresProfiles) Get(ctx context.Context, id string) (Principal, error) {
	p, err := scanProfile(r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM turf.profiles WHERE id=$1;`, id))

	if errors.Is(err, pgx.ErrNoRows) {
		return Principal{}, ErrProfileNotFound
	}
	if err != nil {
		return Principal{}, fmt.Errorf("failed to fetch profile %v: %w", id, err)
	}

	return p, nil
}

func (r *PostgresProfiles) Update(ctx context.Context, id string, patch ProfilePatch) (Principal, error) {
	sql := `
			UPDATE turf.profiles
			SET
				name=COALESCE($1, name),
				mobile=COALESCE($2, mobile)
			WHERE id=$3
			RETURNING ` + profileColumns + `;
		`

	p, err := scanProfile(r.pool.QueryRow(ctx, sql, patch.Name, patch.Mobile, id))

	if errors.Is(err, pgx.ErrNoRows) {
		return Principal{}, ErrProfileNotFound
	}
	if err != nil {
		return Principal{}, fmt.Errorf("failed to update profile %v: %w", id, err)
	}

	return p, nil
}

func (r *PostgresProfiles) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM turf.profiles WHERE id=$1;`, id)
	if err != nil {
		return fmt.Errorf("failed to delete profile %v: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProfileNotFound
	}
	return nil
}

type MongoProfiles struct{ profiles *mongo.Collection }

func NewMongoProfiles(db *mongo.Database) *MongoProfiles {
	return &MongoProfiles{profiles: db.Collection("profiles")}
}

func (r *MongoProfiles) Create(ctx context.Context, p Principal) error {
	if _, err := r.profiles.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("failed to insert profile: %w", err)
	}
	return nil
}

func (r *MongoProfiles) Get(ctx context.Context, id string) (Principal, error) {
	var p Principal
	err := r.profiles.FindOne(ctx, bson.M{"_id": id}).Decode(&p)

	if errors.Is(err, mongo.ErrNoDocuments) {
		return Principal{}, ErrProfileNotFound
	}
	if err != nil {
		return Principal{}, fmt.Errorf("failed to fetch profile %v: %w", id, err)
	}

	return p, nil
}

func (r *MongoProfiles) Update(ctx context.Context, id string, patch ProfilePatch) (Principal, error) {
	set := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Mobile != nil {
		set["mobile"] = *patch.Mobile
	}
	if len(set) == 0 {
		return r.Get(ctx, id)
	}

	var p Principal
	err := r.profiles.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&p)

	if errors.Is(err, mongo.ErrNoDocuments) {
		return Principal{}, ErrProfileNotFound
	}
	if err != nil {
		return Principal{}, fmt.Errorf("failed to update profile %v: %w", id, err)
	}

	return p, nil
}

func (r *MongoProfiles) Delete(ctx context.Context, id string) error {
	res, err := r.profiles.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete profile %v: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrProfileNotFound
	}
	return nil
}
