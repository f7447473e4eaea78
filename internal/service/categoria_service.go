package service

import (
	"context"
	"errors"

	"github.com/H-Riv/mundo-cartas/internal/dto"
	"github.com/H-Riv/mundo-cartas/internal/model"
	"github.com/H-Riv/mundo-cartas/internal/repository"

	"github.com/google/uuid"
)

type CategoriaService interface {
	Crear(ctx context.Context, req dto.CrearCategoriaRequest) (*dto.CategoriaResponse, error)
	Listar(ctx context.Context) ([]dto.CategoriaResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarCategoriaRequest) (*dto.CategoriaResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
}

type categoriaService struct {
	repo repository.CategoriaRepository
}

func NewCategoriaService(repo repository.CategoriaRepository) CategoriaService {
	return &categoriaService{repo: repo}
}

func (s *categoriaService) Crear(ctx context.Context, req dto.CrearCategoriaRequest) (*dto.CategoriaResponse, error) {
	if _, err := s.repo.FindByNombre(ctx, req.Nombre); err == nil {
		return nil, errors.New("ya existe una categoría con ese nombre")
	}
	categoria := &model.Categoria{
		Nombre:      req.Nombre,
		Descripcion: req.Descripcion,
		Activo:      true,
	}
	if err := s.repo.Create(ctx, categoria); err != nil {
		return nil, err
	}
	return categoriaToResponse(categoria), nil
}

func (s *categoriaService) Listar(ctx context.Context) ([]dto.CategoriaResponse, error) {
	categorias, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.CategoriaResponse, len(categorias))
	for i, c := range categorias {
		resp[i] = *categoriaToResponse(&c)
	}
	return resp, nil
}

func (s *categoriaService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarCategoriaRequest) (*dto.CategoriaResponse, error) {
	categoria, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("categoría no encontrada")
	}
	if req.Nombre != nil {
		categoria.Nombre = *req.Nombre
	}
	if req.Descripcion != nil {
		categoria.Descripcion = req.Descripcion
	}
	if err := s.repo.Update(ctx, categoria); err != nil {
		return nil, err
	}
	return categoriaToResponse(categoria), nil
}

func (s *categoriaService) Desactivar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return errors.New("categoría no encontrada")
	}
	return s.repo.SoftDelete(ctx, id)
}

func categoriaToResponse(c *model.Categoria) *dto.CategoriaResponse {
	return &dto.CategoriaResponse{
		ID:          c.ID.String(),
		Nombre:      c.Nombre,
		Descripcion: c.Descripcion,
		Activo:      c.Activo,
	}
}
