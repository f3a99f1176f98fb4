package controller

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"clinical-docs-be/internal/dto"
	"clinical-docs-be/internal/pkg/serverutils"
	"clinical-docs-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// IWorkflowController exposes the session workspace: one stateful view per
// operator and session, mutated by small commands that each return the full
// snapshot.
type IWorkflowController interface {
	RegisterRoutes(r fiber.Router)
}

type workflowController struct {
	workflowService service.IWorkflowService
}

func NewWorkflowController(workflowService service.IWorkflowService) IWorkflowController {
	return &workflowController{
		workflowService: workflowService,
	}
}

func (c *workflowController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/workflow/v1/:sessionId")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.open)
	h.Post("refresh", c.refresh)
	h.Delete("view", c.close)
	h.Delete("", c.deleteSession)

	h.Post("file", c.selectFile)
	h.Post("toggle", c.toggleUploadFlag)
	h.Post("upload", c.upload)

	h.Post("insight", c.toggleInsight)

	h.Post("note/section", c.editSection)
	h.Post("note/save", c.saveNote)
	h.Post("note/approve", c.approveNote)
	h.Post("note/embed", c.embedNote)
	h.Get("note/:noteId/pdf", c.exportNotePdf)

	h.Put("meta", c.editMeta)
	h.Post("meta/save", c.saveMeta)

	h.Post("document/:documentId/reprocess", c.reprocess)
}

func workflowIdentity(ctx *fiber.Ctx) (userId, sessionId uuid.UUID, err error) {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ = uuid.Parse(userIdStr)
	sessionId, err = uuid.Parse(ctx.Params("sessionId"))
	if err != nil {
		return uuid.Nil, uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}
	return userId, sessionId, nil
}

func (c *workflowController) open(ctx *fiber.Ctx) error {
	userId, sessionId, err := workflowIdentity(ctx)
	if err != nil {
		return err
	}
	res, err := c.workflowService.Open(ctx.Context(), userId, sessionId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success open workspace", res))
}

func (c *workflowController) refresh(ctx *fiber.Ctx) error {
	userId, sessionId, err := workflowIdentity(ctx)
	if err != nil {
		return err
	}
	res, err := c.workflowService.Refresh(ctx.Context(), userId, sessionId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success refresh workspace", res))
}

func (c *workflowController) close(ctx *fiber.Ctx) error {
	userId, sessionId, err := workflowIdentity(ctx)
	if err != nil {
		return err
	}
	c.workflowService.Close(ctx.Context(), userId, sessionId)
	return ctx.JSON(serverutils.SuccessResponse[any]("Success close workspace", nil))
}

func (c *workflowController) deleteSession(ctx *fiber.Ctx) error {
	userId, sessionId, err := workflowIdentity(ctx)
	if err != nil {
		return err
	}
	if err := c.workflowService.DeleteSession(ctx.Context(), userId, sessionId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete session", nil))
}

func (c *workflowController) selectFile(ctx *fiber.Ctx) error {
	userId, sessionId, err := workflowIdentity(ctx)
	if err != nil {
		return err
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "no file in request")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()
	content, err := io.ReadAll(file)
	if err != nil {
		return err
	}

	req := dto.WorkflowSelectFileRequest{
		SessionId: sessionId,
		FileName:  fileHeader.Filename,
		FileType:  strings.TrimPrefix(filepath.Ext(fileHeader.Filename), "."),
		FileSize:  fileHeader.Size,
		Content:   content,
	}
	res, err := c.workflowService.SelectFile(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success select file", res))
}

func (c *workflowController) toggleUploadFlag(ctx *fiber.Ctx) error {
	userId, sessionId, err := workflowIdentity(ctx)
	if err != nil {
		return err
	}

	var req dto.WorkflowToggleRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.SessionId = sessionId
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.workflowService.ToggleUploadFlag(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success toggle flag", res))
}

func (c *workflowController) upload(ctx *fiber.Ctx) error {
	userId, sessionId, err := workflowIdentity(ctx)
	if err != nil {
		return err
	}
	res, err := c.workflowService.Upload(ctx.Context(), userId, sessionId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success upload", res))
}

func (c *workflowController) toggleInsight(ctx *fiber.Ctx) error {
	userId, sessionId, err := workflowIdentity(ctx)
	if err != nil {
		return err
	}

	var req dto.WorkflowInsightToggleRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.SessionId = sessionId
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.workflowService.ToggleInsight(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success toggle insight", res))
}

func (c *workflowController) editSection(ctx *fiber.Ctx) error {
	userId, sessionId, err := workflowIdentity(ctx)
	if err != nil {
		return err
	}

	var req dto.WorkflowEditSectionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.SessionId = sessionId
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.workflowService.EditSection(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success edit section", res))
}

func (c *workflowController) saveNote(ctx *fiber.Ctx) error {
	return c.noteAction(ctx, "Success save note", c.workflowService.SaveNote)
}

func (c *workflowController) approveNote(ctx *fiber.Ctx) error {
	return c.noteAction(ctx, "Success update approval", c.workflowService.ApproveNote)
}

func (c *workflowController) embedNote(ctx *fiber.Ctx) error {
	return c.noteAction(ctx, "Success queue embedding", c.workflowService.EmbedNote)
}

type noteActionFunc func(ctx context.Context, userId uuid.UUID, req *dto.WorkflowNoteActionRequest) (*dto.WorkflowSnapshotResponse, error)

func (c *workflowController) noteAction(ctx *fiber.Ctx, message string, action noteActionFunc) error {
	userId, sessionId, err := workflowIdentity(ctx)
	if err != nil {
		return err
	}

	var req dto.WorkflowNoteActionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.SessionId = sessionId
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := action(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse(message, res))
}

func (c *workflowController) exportNotePdf(ctx *fiber.Ctx) error {
	userId, sessionId, err := workflowIdentity(ctx)
	if err != nil {
		return err
	}
	noteId, err := uuid.Parse(ctx.Params("noteId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid note id")
	}

	rendered, fileName, err := c.workflowService.ExportNotePdf(ctx.Context(), userId, &dto.WorkflowNoteActionRequest{
		SessionId: sessionId,
		NoteId:    noteId,
	})
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, "application/pdf")
	ctx.Set(fiber.HeaderContentDisposition, `attachment; filename="`+fileName+`"`)
	return ctx.Send(rendered)
}

func (c *workflowController) editMeta(ctx *fiber.Ctx) error {
	userId, sessionId, err := workflowIdentity(ctx)
	if err != nil {
		return err
	}

	var req dto.WorkflowEditMetaRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.SessionId = sessionId

	res, err := c.workflowService.EditMeta(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success edit session meta", res))
}

func (c *workflowController) saveMeta(ctx *fiber.Ctx) error {
	userId, sessionId, err := workflowIdentity(ctx)
	if err != nil {
		return err
	}
	res, err := c.workflowService.SaveMeta(ctx.Context(), userId, sessionId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success save session meta", res))
}

func (c *workflowController) reprocess(ctx *fiber.Ctx) error {
	userId, sessionId, err := workflowIdentity(ctx)
	if err != nil {
		return err
	}
	documentId, err := uuid.Parse(ctx.Params("documentId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid document id")
	}

	res, err := c.workflowService.Reprocess(ctx.Context(), userId, sessionId, documentId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success request reprocess", res))
}
