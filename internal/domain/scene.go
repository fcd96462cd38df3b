package domain

import "time"

// SceneResult is one row per (pipeline_id, scene_number). The three terminal
// branches each own one nullable column and may interleave arbitrarily; the
// row is created lazily on the first write of any column.
type SceneResult struct {
	PipelineID    string    `gorm:"column:pipeline_id;primaryKey"`
	SceneNumber   int       `gorm:"column:scene_number;primaryKey"`
	Mood          *string   `gorm:"column:mood;type:varchar(50)"`
	SceneStory    *string   `gorm:"column:scene_story;type:text"`
	SceneImageURL *string   `gorm:"column:scene_image_url;type:text"`
	CreatedAt     time.Time `gorm:"column:created_at"`
}

func (SceneResult) TableName() string { return "pipeline_result" }

// SceneDocument is the structured output of the scene parser (order 3).
type SceneDocument struct {
	Scenes []Scene `json:"scenes"`
}

type Scene struct {
	SceneNumber int    `json:"scene_number"`
	Mood        string `json:"mood"`
	Story       string `json:"story"`
}

// SceneStoryItem is the per-scene payload of the translation branch (order 31).
type SceneStoryItem struct {
	SceneNumber int    `json:"scene_number"`
	Story       string `json:"story"`
}

// SceneMoodItem is the per-scene payload of the emotion branch (order 32).
type SceneMoodItem struct {
	SceneNumber int    `json:"scene_number"`
	Mood        string `json:"mood"`
}
