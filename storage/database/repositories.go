package database

import (
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/escola/core"
	"github.com/trezcool/escola/core/grade"
	"github.com/trezcool/escola/core/payment"
	"github.com/trezcool/escola/core/registration"
	"github.com/trezcool/escola/core/user"
	inmemdb "github.com/trezcool/escola/storage/database/inmem"
	sqlxrepos "github.com/trezcool/escola/storage/database/sqlx"
)

// Repositories bundles the repositories of the configured storage engine.
type Repositories struct {
	// SQL is the postgres connection; nil with in-memory storage.
	SQL *sqlx.DB

	User         user.Repository
	Registration registration.Repository
	Payment      payment.Repository
	Grade        grade.Repository
}

// DB returns the transactional handle for services, nil with in-memory storage.
func (r Repositories) DB() core.DB {
	if r.SQL == nil {
		return nil
	}
	return r.SQL
}

func (r Repositories) Close() error {
	if r.SQL == nil {
		return nil
	}
	return r.SQL.Close()
}

// Setup opens the configured storage. With postgres, the database and app user are created
// when missing and, if migrate is set, pending migrations are applied.
func Setup(conf *core.Config, migrate bool) (Repositories, error) {
	switch conf.Database.Engine {
	case EngineInMemory:
		db := inmemdb.Open()
		return Repositories{
			User:         inmemdb.NewUserRepository(db),
			Registration: inmemdb.NewRegistrationRepository(db),
			Payment:      inmemdb.NewPaymentRepository(db),
			Grade:        inmemdb.NewGradeRepository(db),
		}, nil

	case EnginePostgres:
		if err := CreateIfNotExist(conf); err != nil {
			return Repositories{}, errors.Wrap(err, "creating database")
		}
		db, err := Open(conf)
		if err != nil {
			return Repositories{}, err
		}
		if migrate {
			if err = Migrate(db.DB); err != nil {
				_ = db.Close()
				return Repositories{}, err
			}
		}
		return Repositories{
			SQL:          db,
			User:         sqlxrepos.NewUserRepository(db),
			Registration: sqlxrepos.NewRegistrationRepository(db),
			Payment:      sqlxrepos.NewPaymentRepository(db),
			Grade:        sqlxrepos.NewGradeRepository(db),
		}, nil
	}
	return Repositories{}, errors.Errorf("unknown database engine %q", conf.Database.Engine)
}
