package fixtures

import (
	"time"

	"github.com/shivanshukushwah/worknest-backend/internal/model"
)

var (
	TestEmployer = model.User{
		ID:              1,
		Name:            "Acme Staffing",
		Email:           "owner@acme.test",
		Role:            model.RoleEmployer,
		Phone:           "+911234567890",
		IsPhoneVerified: true,
		Employer: &model.EmployerProfile{
			BusinessName: "Acme Staffing",
			BusinessType: "services",
		},
	}

	TestStudent = model.User{
		ID:              2,
		Name:            "Ravi Kumar",
		Email:           "ravi@student.test",
		Role:            model.RoleStudent,
		Phone:           "+919876543210",
		IsPhoneVerified: true,
		Score:           35,
		Student: &model.StudentProfile{
			Institution: "IIT Delhi",
			Degree:      "B.Tech",
			Year:        3,
			City:        "Delhi",
			State:       "Delhi",
		},
	}

	TestStudentUnverified = model.User{
		ID:    3,
		Name:  "Meera Shah",
		Email: "meera@student.test",
		Role:  model.RoleStudent,
		Score: 35,
		Student: &model.StudentProfile{
			Institution: "Delhi University",
			Degree:      "B.Com",
			Year:        2,
		},
	}
)

func NewOfflineJobRequest(employerID int64) model.JobCreateRequest {
	return model.JobCreateRequest{
		EmployerID:  employerID,
		Title:       "Flyer distribution",
		Description: "Hand out flyers near the metro station",
		Category:    "promotion",
		Budget:      500,
		Duration:    "2",
		JobType:     model.JobTypeOffline,
		Location: &model.Location{
			City:  "Delhi",
			State: "Delhi",
		},
		PositionsRequired: 1,
	}
}

func NewOnlineJobRequest(employerID int64) model.JobCreateRequest {
	return model.JobCreateRequest{
		EmployerID:           employerID,
		Title:                "Landing page design",
		Description:          "Design a responsive landing page",
		Category:             "design",
		Budget:               2000,
		Duration:             "7",
		JobType:              model.JobTypeOnline,
		PositionsRequired:    1,
		ShortlistMultiplier:  3,
		ShortlistWindowHours: 1,
	}
}

func NewApplyRequest(studentID int64, profileURL string) model.ApplyRequest {
	return model.ApplyRequest{
		StudentID:   studentID,
		CoverLetter: "I can start right away",
		ProfileURL:  profileURL,
	}
}

var (
	StrongProfileURLs = []string{
		"https://github.com/ravi-kumar/portfolio?tab=repositories",
		"https://linkedin.com/in/ravi-kumar-123456789",
		"https://behance.net/meerashah/projects",
	}

	WeakProfileURLs = []string{
		"",
		"not a url",
		"https://example.com",
	}
)

func NewPendingOutboxEvent(recipientID int64, jobID *int64, typ model.NotificationType) *model.OutboxEvent {
	return &model.OutboxEvent{
		Type:        typ,
		RecipientID: recipientID,
		JobID:       jobID,
		Title:       "Test notification",
		Message:     "Test notification body",
		Status:      model.OutboxPending,
		CreatedAt:   time.Now().UTC(),
	}
}
