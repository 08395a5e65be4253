package database

import (
	"fmt"
	"log"
	"os"

	"github.com/sahilchouksey/course-market-api/model"
	"github.com/sahilchouksey/course-market-api/utils/auth"
	"gorm.io/gorm"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// SeedAll runs all seed functions
func (s *Seeder) SeedAll() error {
	log.Println("🌱 Starting database seeding...")

	// Run seeds in order (respecting foreign key constraints)
	if err := s.SeedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	if err := s.SeedInstructor(); err != nil {
		return fmt.Errorf("failed to seed instructor: %w", err)
	}

	if err := s.SeedCourses(); err != nil {
		return fmt.Errorf("failed to seed courses: %w", err)
	}

	log.Println("✅ Database seeding completed successfully!")
	return nil
}

// SeedAdminUser creates the default admin user
func (s *Seeder) SeedAdminUser() error {
	var count int64
	if err := s.db.Model(&model.User{}).Where("role = ?", model.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("⏭️  Admin user already exists, skipping...")
		return nil
	}

	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminEmail == "" || adminPassword == "" {
		log.Println("⚠️  ADMIN_EMAIL and ADMIN_PASSWORD environment variables not set, skipping admin user creation")
		return nil
	}

	passwordHash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return err
	}

	admin := model.User{
		Email:        adminEmail,
		Name:         "Administrator",
		PasswordHash: passwordHash,
		Role:         model.RoleAdmin,
	}
	if err := s.db.Create(&admin).Error; err != nil {
		return err
	}

	log.Printf("👤 Created admin user: %s", adminEmail)
	return nil
}

// SeedInstructor creates a demo instructor for development
func (s *Seeder) SeedInstructor() error {
	var count int64
	if err := s.db.Model(&model.User{}).Where("role = ?", model.RoleInstructor).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("⏭️  Instructor already exists, skipping...")
		return nil
	}

	passwordHash, err := auth.HashPassword("instructor123")
	if err != nil {
		return err
	}

	instructor := model.User{
		Email:        "instructor@example.com",
		Name:         "Demo Instructor",
		PasswordHash: passwordHash,
		Role:         model.RoleInstructor,
	}
	if err := s.db.Create(&instructor).Error; err != nil {
		return err
	}

	log.Println("👤 Created demo instructor: instructor@example.com")
	return nil
}

// SeedCourses creates sample courses with lessons for development
func (s *Seeder) SeedCourses() error {
	var count int64
	if err := s.db.Model(&model.Course{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("⏭️  Courses already exist, skipping...")
		return nil
	}

	var instructor model.User
	if err := s.db.Where("role = ?", model.RoleInstructor).First(&instructor).Error; err != nil {
		log.Println("⚠️  No instructor found, skipping course seeding")
		return nil
	}

	slug := "deep-learning-foundations"
	courses := []model.Course{
		{
			InstructorID: instructor.ID,
			Title:        "Deep Learning Foundations",
			Slug:         &slug,
			Description:  "Neural networks from first principles through training at scale.",
			Price:        499.00,
			Lessons: []model.Lesson{
				{
					Title:         "Welcome and Course Overview",
					Description:   "What to expect and how to set up your environment.",
					OrderIndex:    0,
					IsFreePreview: true,
				},
				{
					Title:       "Perceptrons and Gradient Descent",
					Description: "The building blocks of every network.",
					OrderIndex:  1,
				},
				{
					Title:       "Backpropagation in Depth",
					Description: "Deriving and implementing backprop by hand.",
					OrderIndex:  2,
				},
			},
		},
		{
			InstructorID: instructor.ID,
			Title:        "Practical SQL for Analysts",
			Description:  "Query real datasets with confidence.",
			Price:        299.00,
			Lessons: []model.Lesson{
				{
					Title:         "Your First Queries",
					OrderIndex:    0,
					IsFreePreview: true,
				},
				{
					Title:      "Joins and Aggregation",
					OrderIndex: 1,
				},
			},
		},
	}

	for i := range courses {
		if err := s.db.Create(&courses[i]).Error; err != nil {
			return err
		}
		log.Printf("📚 Created course: %s", courses[i].Title)
	}

	return nil
}

// RunSeeds is the entrypoint used by cmd/seed
func RunSeeds(db *gorm.DB) error {
	return NewSeeder(db).SeedAll()
}
