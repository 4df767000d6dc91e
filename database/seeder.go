package database

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/pastpaper/pastpaper-be/internal/entity"
)

// SubjectData - static catalogue of subjects offered per education level
var SubjectData = []entity.Subject{
	{Level: "P6", Name: "Mathematics", Icon: "🔢", Description: "Primary 6 Mathematics past papers"},
	{Level: "P6", Name: "English", Icon: "📖", Description: "Primary 6 English past papers"},
	{Level: "P6", Name: "Science", Icon: "🔬", Description: "Primary 6 Science and Elementary Technology past papers"},
	{Level: "P6", Name: "Social Studies", Icon: "🌍", Description: "Primary 6 Social and Religious Studies past papers"},
	{Level: "P6", Name: "Kinyarwanda", Icon: "🗣️", Description: "Primary 6 Kinyarwanda past papers"},
	{Level: "S3", Name: "Mathematics", Icon: "🔢", Description: "Senior 3 Mathematics past papers"},
	{Level: "S3", Name: "English", Icon: "📖", Description: "Senior 3 English past papers"},
	{Level: "S3", Name: "Physics", Icon: "⚛️", Description: "Senior 3 Physics past papers"},
	{Level: "S3", Name: "Chemistry", Icon: "🧪", Description: "Senior 3 Chemistry past papers"},
	{Level: "S3", Name: "Biology", Icon: "🧬", Description: "Senior 3 Biology and Health Sciences past papers"},
	{Level: "S3", Name: "Geography", Icon: "🌍", Description: "Senior 3 Geography past papers"},
	{Level: "S3", Name: "History", Icon: "🏛️", Description: "Senior 3 History and Citizenship past papers"},
	{Level: "S6", Name: "Mathematics", Icon: "🔢", Description: "Senior 6 Mathematics past papers"},
	{Level: "S6", Name: "Physics", Icon: "⚛️", Description: "Senior 6 Physics past papers"},
	{Level: "S6", Name: "Chemistry", Icon: "🧪", Description: "Senior 6 Chemistry past papers"},
	{Level: "S6", Name: "Biology", Icon: "🧬", Description: "Senior 6 Biology past papers"},
	{Level: "S6", Name: "Economics", Icon: "📈", Description: "Senior 6 Economics past papers"},
	{Level: "S6", Name: "Geography", Icon: "🌍", Description: "Senior 6 Geography past papers"},
	{Level: "S6", Name: "Computer Science", Icon: "💻", Description: "Senior 6 Computer Science past papers"},
}

// SeedSubjects - populate the subject catalogue on first boot
func SeedSubjects(db *gorm.DB) error {
	var count int64
	db.Model(&entity.Subject{}).Count(&count)
	if count > 0 {
		fmt.Println("Subjects already seeded, skipping...")
		return nil
	}

	fmt.Println("Seeding subjects...")

	for _, subject := range SubjectData {
		if err := db.Create(&subject).Error; err != nil {
			return fmt.Errorf("failed to seed subject %s %s: %w", subject.Level, subject.Name, err)
		}
	}

	fmt.Printf("Successfully seeded %d subjects\n", len(SubjectData))
	return nil
}

type seedQuestion struct {
	Text          string
	QuestionType  string
	Options       string
	CorrectAnswer string
	Difficulty    string
}

// SampleQuestionData - starter question pool keyed by "<level> <subject>".
// Real pools are built by document ingestion; these make pool-first question
// resolution work on a fresh install.
var SampleQuestionData = map[string][]seedQuestion{
	"P6 Social Studies": {
		{Text: "What is the capital city of Rwanda?", QuestionType: "short-answer", CorrectAnswer: "Kigali", Difficulty: "easy"},
		{Text: "Which lake is the largest in Rwanda?", QuestionType: "mcq", Options: `["A) Lake Muhazi","B) Lake Kivu","C) Lake Ihema","D) Lake Burera"]`, CorrectAnswer: "B) Lake Kivu", Difficulty: "easy"},
		{Text: "Rwanda is located in East Africa.", QuestionType: "true-or-false", CorrectAnswer: "true", Difficulty: "easy"},
		{Text: "Name two basic needs of a family.", QuestionType: "short-answer", CorrectAnswer: "Food, Shelter", Difficulty: "medium"},
	},
	"P6 Science": {
		{Text: "What gas do plants release during photosynthesis?", QuestionType: "short-answer", CorrectAnswer: "oxygen", Difficulty: "easy"},
		{Text: "Water boils at _____ degrees Celsius at sea level.", QuestionType: "fill-in-the-blank", CorrectAnswer: "100", Difficulty: "easy"},
		{Text: "Which organ pumps blood around the body?", QuestionType: "mcq", Options: `["A) Lungs","B) Liver","C) Heart","D) Kidneys"]`, CorrectAnswer: "C) Heart", Difficulty: "easy"},
	},
	"S3 Geography": {
		{Text: "Name the process by which water changes from liquid to vapour.", QuestionType: "short-answer", CorrectAnswer: "evaporation", Difficulty: "easy"},
		{Text: "Explain two causes of soil erosion.", QuestionType: "essay", CorrectAnswer: "deforestation and overgrazing expose soil to wind and rain", Difficulty: "medium"},
	},
}

// SeedSampleQuestions - populate a starter question pool on first boot. Each
// seeded subject gets a synthetic "sample" document so the pool resolver can
// scope questions by document like it does for ingested papers.
func SeedSampleQuestions(db *gorm.DB) error {
	var count int64
	db.Model(&entity.Question{}).Count(&count)
	if count > 0 {
		fmt.Println("Question pool already seeded, skipping...")
		return nil
	}

	fmt.Println("Seeding sample question pool...")

	seeded := 0
	for key, questions := range SampleQuestionData {
		parts := strings.SplitN(key, " ", 2)
		if len(parts) != 2 {
			continue
		}
		level, name := parts[0], parts[1]

		var subject entity.Subject
		if err := db.Where("level = ? AND name = ?", level, name).First(&subject).Error; err != nil {
			continue
		}

		collection := level + "_" + strings.ReplaceAll(name, " ", "_")
		document := entity.Document{
			Filename:        collection + "_Sample.pdf",
			Subject:         name,
			Level:           level,
			SubjectID:       &subject.ID,
			CollectionName:  collection,
			IngestionStatus: "completed",
		}
		if err := db.Create(&document).Error; err != nil {
			return fmt.Errorf("failed to seed sample document for %s: %w", key, err)
		}

		for _, q := range questions {
			question := entity.Question{
				Text:          q.Text,
				QuestionType:  q.QuestionType,
				Options:       q.Options,
				CorrectAnswer: q.CorrectAnswer,
				Difficulty:    q.Difficulty,
				DocumentID:    document.ID,
			}
			if err := db.Create(&question).Error; err != nil {
				return fmt.Errorf("failed to seed question for %s: %w", key, err)
			}
			seeded++
		}
	}

	fmt.Printf("Successfully seeded %d sample questions\n", seeded)
	return nil
}
