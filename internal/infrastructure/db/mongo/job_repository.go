package mongo

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kyzmat/marketplace/internal/core/domain"
)

const collectionJobs = "jobs"

type JobRepository struct {
	col *mongo.Collection
}

func NewJobRepository(db *mongo.Database) *JobRepository {
	return &JobRepository{col: db.Collection(collectionJobs)}
}

func (r *JobRepository) Create(ctx context.Context, j *domain.Job) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, j); err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

func (r *JobRepository) FindByID(ctx context.Context, id string) (*domain.Job, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var j domain.Job
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&j); err != nil {
		return nil, notFound(err, domain.ErrJobNotFound)
	}
	return &j, nil
}

// UpdateFields sets only the patched fields, matching on the expected
// status and an unblocked job so a concurrent transition or block wins.
func (r *JobRepository) UpdateFields(ctx context.Context, id string, expect domain.JobStatus, patch domain.JobPatch, at time.Time) (*domain.Job, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": id, "status": expect, "is_blocked": bson.M{"$ne": true}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var j domain.Job
	err := r.col.FindOneAndUpdate(ctx, filter, bson.M{"$set": jobPatchDoc(patch, at)}, opts).Decode(&j)
	if err == nil {
		return &j, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, fmt.Errorf("update job: %w", err)
	}
	current, ferr := r.FindByID(ctx, id)
	if ferr != nil {
		return nil, ferr
	}
	if current.IsBlocked {
		return nil, domain.ErrForbidden
	}
	return nil, domain.ErrInvalidTransition
}

// jobPatchDoc lists the fields patch sets, plus updated_at.
func jobPatchDoc(p domain.JobPatch, at time.Time) bson.M {
	set := bson.M{"updated_at": at}
	if p.Title != nil {
		set["title"] = *p.Title
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Category != nil {
		set["category"] = *p.Category
	}
	if p.Price != nil {
		set["price"] = *p.Price
	}
	if p.Currency != nil {
		set["currency"] = *p.Currency
	}
	if p.Deadline != nil {
		set["deadline"] = *p.Deadline
	}
	if p.Location != nil {
		set["location"] = *p.Location
	}
	if p.Urgency != nil {
		set["urgency"] = *p.Urgency
	}
	return set
}

// UpdateStatus matches on the expected current status so two concurrent
// transitions cannot both succeed.
func (r *JobRepository) UpdateStatus(ctx context.Context, id string, from, to domain.JobStatus, at time.Time) (*domain.Job, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": id, "status": from}
	update := bson.M{"$set": bson.M{"status": to, "updated_at": at}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var j domain.Job
	err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&j)
	if err == nil {
		return &j, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}
	if _, ferr := r.FindByID(ctx, id); ferr != nil {
		return nil, ferr
	}
	return nil, domain.ErrInvalidTransition
}

func (r *JobRepository) SetBlocked(ctx context.Context, id string, blocked bool) (*domain.Job, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{"is_blocked": blocked, "updated_at": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var j domain.Job
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&j); err != nil {
		return nil, notFound(err, domain.ErrJobNotFound)
	}
	return &j, nil
}

func (r *JobRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrJobNotFound
	}
	return nil
}

// List returns the jobs matching f, newest first.
func (r *JobRepository) List(ctx context.Context, f domain.JobFilter) ([]*domain.Job, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, jobFilterDoc(f), options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	jobs := make([]*domain.Job, 0)
	if err := cur.All(ctx, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// jobFilterDoc translates a JobFilter into the equivalent query document.
func jobFilterDoc(f domain.JobFilter) bson.M {
	q := bson.M{}
	if !f.IncludeBlocked {
		q["is_blocked"] = bson.M{"$ne": true}
	}
	if f.Category != "" {
		q["category"] = f.Category
	}
	if f.Urgency != "" {
		q["urgency"] = f.Urgency
	}
	if f.Location != "" {
		q["location"] = f.Location
	}
	if f.ClientID != "" {
		q["client_id"] = f.ClientID
	}
	price := bson.M{}
	if f.MinPrice != nil {
		price["$gte"] = *f.MinPrice
	}
	if f.MaxPrice != nil {
		price["$lte"] = *f.MaxPrice
	}
	if len(price) > 0 {
		q["price"] = price
	}
	if f.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		q["$or"] = bson.A{
			bson.M{"title": re},
			bson.M{"description": re},
		}
	}
	return q
}

func (r *JobRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "client_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
	})
	return err
}
