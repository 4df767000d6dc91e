package usecase

import (
	httpEntity "github.com/pastpaper/pastpaper-be/internal/delivery/http/entity"
	"github.com/pastpaper/pastpaper-be/internal/delivery/http/repository"
	internalEntity "github.com/pastpaper/pastpaper-be/internal/entity"
	"github.com/pastpaper/pastpaper-be/internal/pkg/rag"
)

// sourcesFromChunks converts retrieved chunks into wire source references,
// resolving chunk filenames back to known document rows so a source can be
// linked to the exam paper it came from. A nil repo skips the resolution and
// passes the filename/page through untouched.
func sourcesFromChunks(repo repository.PracticeRepository, chunks []rag.Chunk) []httpEntity.SourceReference {
	seen := map[string]bool{}
	filenames := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		name := chunk.Metadata.FileName
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		filenames = append(filenames, name)
	}

	byFilename := map[string]internalEntity.Document{}
	if repo != nil && len(filenames) > 0 {
		if documents, err := repo.FindDocumentsByFilenames(nil, filenames); err == nil {
			for _, document := range documents {
				byFilename[document.Filename] = document
			}
		}
	}

	sources := make([]httpEntity.SourceReference, 0, len(chunks))
	for _, chunk := range chunks {
		if chunk.Metadata.FileName == "" && chunk.Metadata.PageNumber == nil {
			continue
		}
		ref := httpEntity.SourceReference{
			FileName: chunk.Metadata.FileName,
			Page:     chunk.Metadata.PageNumber,
		}
		if document, ok := byFilename[chunk.Metadata.FileName]; ok {
			ref.DocumentID = document.ID.String()
			ref.DocumentName = document.Filename
		}
		sources = append(sources, ref)
	}
	return sources
}
