package repository

import (
	"time"

	"github.com/shivanshukushwah/worknest-backend/internal/model"
)

type UserEntity struct {
	ID              int64  `db:"id"                gorm:"primaryKey;autoIncrement;column:id"`
	Name            string `db:"name"              gorm:"column:name;not null"`
	Email           string `db:"email"             gorm:"column:email;not null;uniqueIndex"`
	Role            string `db:"role"              gorm:"column:role;not null;index"`
	Phone           string `db:"phone"             gorm:"column:phone"`
	IsPhoneVerified bool   `db:"is_phone_verified" gorm:"column:is_phone_verified;not null;default:false"`
	Score           int    `db:"score"             gorm:"column:score;not null;default:0"`

	Institution string `db:"institution" gorm:"column:institution"`
	Degree      string `db:"degree"      gorm:"column:degree"`
	Year        int    `db:"year"        gorm:"column:year"`
	City        string `db:"city"        gorm:"column:city"`
	State       string `db:"state"       gorm:"column:state"`

	BusinessName    string `db:"business_name"    gorm:"column:business_name"`
	BusinessType    string `db:"business_type"    gorm:"column:business_type"`
	BusinessAddress string `db:"business_address" gorm:"column:business_address"`

	CreatedAt time.Time `db:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (UserEntity) TableName() string {
	return "users"
}

func toUserEntity(m *model.User) *UserEntity {
	if m == nil {
		return nil
	}
	e := &UserEntity{
		ID:              m.ID,
		Name:            m.Name,
		Email:           m.Email,
		Role:            string(m.Role),
		Phone:           m.Phone,
		IsPhoneVerified: m.IsPhoneVerified,
		Score:           m.Score,
		CreatedAt:       m.CreatedAt,
	}
	if m.Student != nil {
		e.Institution = m.Student.Institution
		e.Degree = m.Student.Degree
		e.Year = m.Student.Year
		e.City = m.Student.City
		e.State = m.Student.State
	}
	if m.Employer != nil {
		e.BusinessName = m.Employer.BusinessName
		e.BusinessType = m.Employer.BusinessType
		e.BusinessAddress = m.Employer.BusinessAddress
	}
	return e
}

func toUserModel(e *UserEntity) *model.User {
	if e == nil {
		return nil
	}
	m := &model.User{
		ID:              e.ID,
		Name:            e.Name,
		Email:           e.Email,
		Role:            model.Role(e.Role),
		Phone:           e.Phone,
		IsPhoneVerified: e.IsPhoneVerified,
		Score:           e.Score,
		CreatedAt:       e.CreatedAt,
	}
	switch m.Role {
	case model.RoleStudent:
		m.Student = &model.StudentProfile{
			Institution: e.Institution,
			Degree:      e.Degree,
			Year:        e.Year,
			City:        e.City,
			State:       e.State,
		}
	case model.RoleEmployer:
		m.Employer = &model.EmployerProfile{
			BusinessName:    e.BusinessName,
			BusinessType:    e.BusinessType,
			BusinessAddress: e.BusinessAddress,
		}
	}
	return m
}

type ScoreLogEntity struct {
	ID        int64     `db:"id"         gorm:"primaryKey;autoIncrement;column:id"`
	UserID    int64     `db:"user_id"    gorm:"column:user_id;not null;index"`
	Event     string    `db:"event"      gorm:"column:event;not null"`
	Delta     int       `db:"delta"      gorm:"column:delta;not null"`
	Reason    string    `db:"reason"     gorm:"column:reason"`
	Meta      string    `db:"meta"       gorm:"column:meta"`
	CreatedAt time.Time `db:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (ScoreLogEntity) TableName() string {
	return "score_logs"
}

func toScoreLogModel(e *ScoreLogEntity) *model.ScoreLog {
	if e == nil {
		return nil
	}
	return &model.ScoreLog{
		ID:        e.ID,
		UserID:    e.UserID,
		Event:     model.ScoreEvent(e.Event),
		Delta:     e.Delta,
		Reason:    e.Reason,
		Meta:      e.Meta,
		CreatedAt: e.CreatedAt,
	}
}
