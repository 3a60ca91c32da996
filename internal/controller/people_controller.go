package controller

import (
	"fmt"
	"onlinecourse_backend/internal/service"
	"onlinecourse_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type PeopleController struct {
	PeopleService *service.PeopleService
}

func NewPeopleController(peopleService *service.PeopleService) *PeopleController {
	return &PeopleController{PeopleService: peopleService}
}

// @Summary 创建学员档案
// @Description 管理员可为任意用户创建，普通用户只能为自己创建
// @Tags 人员
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.LearnerReq true "学员信息"
// @Success 201 {object} util.Response{data=model.Learner}
// @Router /learners [post]
func (c *PeopleController) CreateLearner(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req service.LearnerReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if user.Role != util.RoleAdmin && user.UserID != req.UserID {
		util.Forbidden(ctx)
		return
	}
	learner, err := c.PeopleService.CreateLearner(ctx.Request.Context(), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, learner)
}

// @Summary 学员详情
// @Tags 人员
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "学员ID"
// @Success 200 {object} util.Response{data=model.Learner}
// @Router /learners/{id} [get]
func (c *PeopleController) GetLearner(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if !user.CanReadLearner(id) {
		util.HandleError(ctx, fmt.Errorf("learner %d: %w", id, util.ErrPermissionDenied))
		return
	}
	learner, err := c.PeopleService.GetLearner(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, learner)
}

// @Summary 创建讲师档案
// @Tags 人员
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.InstructorReq true "讲师信息"
// @Success 201 {object} util.Response{data=model.Instructor}
// @Router /instructors [post]
func (c *PeopleController) CreateInstructor(ctx *gin.Context) {
	var req service.InstructorReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	instructor, err := c.PeopleService.CreateInstructor(ctx.Request.Context(), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, instructor)
}

// @Summary 讲师详情
// @Tags 人员
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "讲师ID"
// @Success 200 {object} util.Response{data=model.Instructor}
// @Router /instructors/{id} [get]
func (c *PeopleController) GetInstructor(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	instructor, err := c.PeopleService.GetInstructor(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, instructor)
}
