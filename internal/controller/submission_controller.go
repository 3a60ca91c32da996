package controller

import (
	"onlinecourse_backend/internal/service"
	"onlinecourse_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SubmissionController struct {
	GradingService    *service.GradingService
	EnrollmentService *service.EnrollmentService
}

func NewSubmissionController(gradingService *service.GradingService, enrollmentService *service.EnrollmentService) *SubmissionController {
	return &SubmissionController{
		GradingService:    gradingService,
		EnrollmentService: enrollmentService,
	}
}

// @Summary 提交课时答案并评分
// @Description 每道题全对才得分，课时得分为按分值加权的比例；每个课时只能提交一次
// @Tags 提交
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "报名ID"
// @Param body body service.GradeReq true "所选选项"
// @Success 201 {object} util.Response{data=service.GradeResult}
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response
// @Failure 422 {object} util.Response
// @Router /enrollments/{id}/submissions [post]
func (c *SubmissionController) Grade(ctx *gin.Context) {
	enrollmentID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if _, ok := loadEnrollment(ctx, c.EnrollmentService, enrollmentID); !ok {
		return
	}
	var req service.GradeReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.GradingService.Grade(ctx.Request.Context(), enrollmentID, req.LessonID, req.ChoiceIDs)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, result)
}

// @Summary 报名的提交记录
// @Tags 提交
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "报名ID"
// @Success 200 {object} util.Response{data=[]model.Submission}
// @Router /enrollments/{id}/submissions [get]
func (c *SubmissionController) ListSubmissions(ctx *gin.Context) {
	enrollmentID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if _, ok := loadEnrollment(ctx, c.EnrollmentService, enrollmentID); !ok {
		return
	}
	subs, err := c.GradingService.ListSubmissions(ctx.Request.Context(), enrollmentID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, subs)
}

// @Summary 提交详情
// @Tags 提交
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "提交ID"
// @Success 200 {object} util.Response{data=model.Submission}
// @Router /submissions/{id} [get]
func (c *SubmissionController) GetSubmission(ctx *gin.Context) {
	sub, err := c.GradingService.GetSubmission(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	if _, ok := loadEnrollment(ctx, c.EnrollmentService, sub.EnrollmentID); !ok {
		return
	}
	util.Success(ctx, sub)
}

// @Summary 重置学员提交
// @Description 删除一次已评分的提交，允许学员重新作答，并重新计算报名评分
// @Tags 提交
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "提交ID"
// @Success 200 {object} util.Response
// @Router /submissions/{id} [delete]
func (c *SubmissionController) ResetSubmission(ctx *gin.Context) {
	sub, err := c.GradingService.GetSubmission(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	if _, ok := loadEnrollment(ctx, c.EnrollmentService, sub.EnrollmentID); !ok {
		return
	}
	rating, err := c.GradingService.ResetSubmission(ctx.Request.Context(), sub.ID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"rating": rating})
}
