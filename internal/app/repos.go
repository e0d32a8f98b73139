package app

import (
	"gorm.io/gorm"

	"github.com/mivamind/casegrade-backend/internal/logger"
	"github.com/mivamind/casegrade-backend/internal/repos"
)

type Repos struct {
	User            repos.UserRepo
	CaseStudy       repos.CaseStudyRepo
	ConversationLog repos.ConversationLogRepo
	Grade           repos.GradeRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:            repos.NewUserRepo(db, log),
		CaseStudy:       repos.NewCaseStudyRepo(db, log),
		ConversationLog: repos.NewConversationLogRepo(db, log),
		Grade:           repos.NewGradeRepo(db, log),
	}
}
