package models

// GenerateOptions параметры генерации поста.
// Даты и стили приходят строками из интерфейса, поэтому валидируются вручную.
type GenerateOptions struct {
	PostType      string `json:"postType" validate:"required"`
	Tone          string `json:"tone" validate:"required"`
	Location      string `json:"location,omitempty"`
	Context       string `json:"context,omitempty"`
	CaptionLength string `json:"captionLength,omitempty"`
	CaptionStyle  string `json:"captionStyle,omitempty"`
}

// ImageAnalysis результат анализа изображения провайдером.
type ImageAnalysis struct {
	Labels   []string `json:"labels,omitempty"`
	Objects  []string `json:"objects,omitempty"`
	Faces    int      `json:"faces,omitempty"`
	Text     string   `json:"text,omitempty"`
	Location string   `json:"location,omitempty"`
}

// GenerateResult итог генерации поста: подпись, хэштеги и подсказки.
type GenerateResult struct {
	Caption     string         `json:"caption"`
	Hashtags    []string       `json:"hashtags"`
	Suggestions []string       `json:"suggestions"`
	Analysis    *ImageAnalysis `json:"analysis,omitempty"`
	Source      string         `json:"source,omitempty"` // Какой провайдер сгенерировал результат
}

// HistoryPost один сохранённый пост из истории на бэкенде.
type HistoryPost struct {
	Caption   string   `json:"caption"`
	Hashtags  []string `json:"hashtags"`
	CreatedAt string   `json:"created_at"`
}
