package postgres

import (
	"context"
	"time"

	"github.com/crewplane/crewplane/internal/auth/domain"
)

type freelancersRepo struct {
	db dbtx
}

func (r *freelancersRepo) GetFreelancerByID(ctx context.Context, id string) (domain.Freelancer, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, email, display_name, created_at FROM freelancers WHERE id = $1`, id)

	f, err := scanFreelancer(row)
	if err != nil {
		return domain.Freelancer{}, mapNotFound(err)
	}
	return f, nil
}

func (r *freelancersRepo) CreateFreelancer(ctx context.Context, f domain.Freelancer) error {
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO freelancers (id, email, display_name, created_at)
		VALUES ($1, $2, $3, $4)`,
		f.ID, f.Email, f.DisplayName, f.CreatedAt,
	)
	return err
}
