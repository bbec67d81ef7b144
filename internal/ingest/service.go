package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"courserag/internal/model"
	"courserag/internal/retrieval"
)

// Service walks course script folders and feeds parsed courses into the
// retrieval layer. Courses already present in the catalog are skipped so
// repeated startups do not re-embed the corpus.
type Service struct {
	retrieval *retrieval.Service
	chunker   *Chunker
	logger    *slog.Logger
}

func NewService(retrievalSvc *retrieval.Service, chunker *Chunker) *Service {
	if chunker == nil {
		chunker = NewChunker(DefaultChunkSize, DefaultChunkOverlap)
	}
	return &Service{
		retrieval: retrievalSvc,
		chunker:   chunker,
		logger:    slog.Default().With("component", "ingest"),
	}
}

// AddCourseFolder ingests every readable course script in dir. It returns the
// number of new courses and chunks added. With clearExisting the catalog is
// wiped first.
func (s *Service) AddCourseFolder(ctx context.Context, dir string, clearExisting bool) (int, int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, 0, fmt.Errorf("read course folder: %w", err)
	}

	if clearExisting {
		if err := s.retrieval.Clear(ctx); err != nil {
			return 0, 0, fmt.Errorf("clear catalog: %w", err)
		}
	}

	existing := map[string]bool{}
	titles, err := s.retrieval.CourseTitles(ctx)
	if err != nil {
		return 0, 0, err
	}
	for _, title := range titles {
		existing[title] = true
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".txt", ".md":
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	coursesAdded, chunksAdded := 0, 0
	for _, name := range names {
		path := filepath.Join(dir, name)
		content, err := os.ReadFile(path)
		if err != nil {
			s.logger.Warn("skipping unreadable course script", "path", path, "error", err)
			continue
		}
		parsed, err := ParseCourseScript(string(content))
		if err != nil {
			s.logger.Warn("skipping malformed course script", "path", path, "error", err)
			continue
		}
		if existing[parsed.Course.Title] {
			continue
		}

		chunks := s.buildChunks(parsed)
		if err := s.retrieval.AddCourse(ctx, parsed.Course); err != nil {
			return coursesAdded, chunksAdded, fmt.Errorf("add course %q: %w", parsed.Course.Title, err)
		}
		if err := s.retrieval.AddChunks(ctx, chunks); err != nil {
			return coursesAdded, chunksAdded, fmt.Errorf("add chunks for %q: %w", parsed.Course.Title, err)
		}
		existing[parsed.Course.Title] = true
		coursesAdded++
		chunksAdded += len(chunks)
		s.logger.Info("course ingested", "title", parsed.Course.Title, "chunks", len(chunks))
	}
	return coursesAdded, chunksAdded, nil
}

// buildChunks splits each lesson section and tags the first chunk of every
// lesson with course and lesson context so filtered searches still read well.
func (s *Service) buildChunks(parsed ParsedCourse) []model.CourseChunk {
	var out []model.CourseChunk
	index := 0
	for _, section := range parsed.Sections {
		pieces := s.chunker.Chunk(section.Text)
		for i, piece := range pieces {
			content := piece
			if i == 0 {
				content = fmt.Sprintf("Course %s Lesson %d content: %s", parsed.Course.Title, section.Number, piece)
			}
			out = append(out, model.CourseChunk{
				Content:      content,
				CourseTitle:  parsed.Course.Title,
				LessonNumber: section.Number,
				ChunkIndex:   index,
			})
			index++
		}
	}
	return out
}
