package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/helpdesk/helpdesk-api/internal/core/domain"
)

const collectionTeams = "teams"

type TeamRepository struct {
	col      *mongo.Collection
	users    *mongo.Collection
	counters *mongo.Collection
	timeout  time.Duration
}

// NewTeamRepository bounds every call by timeout; zero selects the
// connection default.
func NewTeamRepository(db *mongo.Database, timeout time.Duration) *TeamRepository {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &TeamRepository{
		col:      db.Collection(collectionTeams),
		users:    db.Collection(collectionUsers),
		counters: db.Collection(collectionCounters),
		timeout:  timeout,
	}
}

type mongoTeam struct {
	ID          int64     `bson:"_id"`
	Name        string    `bson:"name"`
	Description string    `bson:"description"`
	MemberIDs   []int64   `bson:"member_ids"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

var byID = options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})

func (r *TeamRepository) List(ctx context.Context) ([]*domain.Team, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	docs, err := r.findMany(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	return r.withMembers(ctx, docs)
}

func (r *TeamRepository) FindByID(ctx context.Context, id uint) (*domain.Team, error) {
	return r.findOne(ctx, bson.M{"_id": int64(id)})
}

func (r *TeamRepository) FindByName(ctx context.Context, name string) (*domain.Team, error) {
	return r.findOne(ctx, bson.M{"name": name})
}

func (r *TeamRepository) ListByMember(ctx context.Context, userID uint) ([]domain.TeamRef, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	docs, err := r.findMany(ctx, bson.M{"member_ids": int64(userID)})
	if err != nil {
		return nil, err
	}
	refs := make([]domain.TeamRef, 0, len(docs))
	for _, d := range docs {
		refs = append(refs, domain.TeamRef{ID: uint(d.ID), Name: d.Name, Description: d.Description})
	}
	return refs, nil
}

func (r *TeamRepository) Create(ctx context.Context, team *domain.Team, memberIDs []uint) (*domain.Team, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	members, err := r.existingUserIDs(ctx, memberIDs)
	if err != nil {
		return nil, err
	}
	id, err := nextID(ctx, r.counters, collectionTeams)
	if err != nil {
		return nil, err
	}
	doc := mongoTeam{
		ID:          id,
		Name:        team.Name,
		Description: team.Description,
		MemberIDs:   members,
		CreatedAt:   team.CreatedAt,
		UpdatedAt:   team.UpdatedAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrTeamExists
		}
		return nil, fmt.Errorf("insert team: %w", err)
	}

	teams, err := r.withMembers(ctx, []mongoTeam{doc})
	if err != nil {
		return nil, err
	}
	return teams[0], nil
}

func (r *TeamRepository) Update(ctx context.Context, team *domain.Team, memberIDs []uint) (*domain.Team, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	set := bson.M{
		"name":        team.Name,
		"description": team.Description,
		"updated_at":  team.UpdatedAt,
	}
	if memberIDs != nil {
		members, err := r.existingUserIDs(ctx, memberIDs)
		if err != nil {
			return nil, err
		}
		set["member_ids"] = members
	}

	res, err := r.col.UpdateByID(ctx, int64(team.ID), bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrTeamExists
		}
		return nil, fmt.Errorf("update team %d: %w", team.ID, err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrTeamNotFound
	}
	return r.findOne(ctx, bson.M{"_id": int64(team.ID)})
}

func (r *TeamRepository) Delete(ctx context.Context, id uint) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": int64(id)})
	if err != nil {
		return fmt.Errorf("delete team %d: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrTeamNotFound
	}
	return nil
}

// EnsureIndexes creates the unique name index and the membership index.
func (r *TeamRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "member_ids", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *TeamRepository) findOne(ctx context.Context, filter bson.M) (*domain.Team, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var doc mongoTeam
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTeamNotFound
		}
		return nil, fmt.Errorf("find team: %w", err)
	}
	teams, err := r.withMembers(ctx, []mongoTeam{doc})
	if err != nil {
		return nil, err
	}
	return teams[0], nil
}

func (r *TeamRepository) findMany(ctx context.Context, filter bson.M) ([]mongoTeam, error) {
	cursor, err := r.col.Find(ctx, filter, byID)
	if err != nil {
		return nil, fmt.Errorf("find teams: %w", err)
	}
	var docs []mongoTeam
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode teams: %w", err)
	}
	return docs, nil
}

// withMembers resolves member ids with a single users query.
func (r *TeamRepository) withMembers(ctx context.Context, docs []mongoTeam) ([]*domain.Team, error) {
	var ids []int64
	for _, d := range docs {
		ids = append(ids, d.MemberIDs...)
	}

	var users []mongoUser
	if len(ids) > 0 {
		cursor, err := r.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
		if err != nil {
			return nil, fmt.Errorf("find members: %w", err)
		}
		if err := cursor.All(ctx, &users); err != nil {
			return nil, fmt.Errorf("decode members: %w", err)
		}
	}
	return assembleTeams(docs, users), nil
}

// assembleTeams joins team documents with their member users. Members keep
// the order of MemberIDs; ids without a user are dropped.
func assembleTeams(docs []mongoTeam, users []mongoUser) []*domain.Team {
	byUser := make(map[int64]*domain.User, len(users))
	for i := range users {
		byUser[users[i].ID] = users[i].toDomain()
	}

	teams := make([]*domain.Team, 0, len(docs))
	for _, d := range docs {
		members := make([]domain.Member, 0, len(d.MemberIDs))
		for _, id := range d.MemberIDs {
			if u, ok := byUser[id]; ok {
				members = append(members, domain.MemberOf(u))
			}
		}
		teams = append(teams, &domain.Team{
			ID:          uint(d.ID),
			Name:        d.Name,
			Description: d.Description,
			Members:     members,
			CreatedAt:   d.CreatedAt.UTC(),
			UpdatedAt:   d.UpdatedAt.UTC(),
		})
	}
	return teams
}

// existingUserIDs keeps only the ids that match a stored user, in
// ascending order.
func (r *TeamRepository) existingUserIDs(ctx context.Context, ids []uint) ([]int64, error) {
	out := []int64{}
	if len(ids) == 0 {
		return out, nil
	}
	wanted := make([]int64, 0, len(ids))
	for _, id := range ids {
		wanted = append(wanted, int64(id))
	}

	cursor, err := r.users.Find(ctx,
		bson.M{"_id": bson.M{"$in": wanted}},
		options.Find().SetProjection(bson.M{"_id": 1}).SetSort(bson.D{{Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("find member ids: %w", err)
	}
	var found []struct {
		ID int64 `bson:"_id"`
	}
	if err := cursor.All(ctx, &found); err != nil {
		return nil, fmt.Errorf("decode member ids: %w", err)
	}
	for _, f := range found {
		out = append(out, f.ID)
	}
	return out, nil
}
