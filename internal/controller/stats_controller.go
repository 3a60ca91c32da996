package controller

import (
	"onlinecourse_backend/internal/service"
	"onlinecourse_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type StatsController struct {
	AggregationService *service.AggregationService
	EnrollmentService  *service.EnrollmentService
}

func NewStatsController(aggregationService *service.AggregationService, enrollmentService *service.EnrollmentService) *StatsController {
	return &StatsController{
		AggregationService: aggregationService,
		EnrollmentService:  enrollmentService,
	}
}

// @Summary 课程统计
// @Description 实时报名人数、平均评分和已评分报名数
// @Tags 统计
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response{data=model.CourseStats}
// @Router /courses/{id}/stats [get]
func (c *StatsController) GetCourseStats(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if !authorizeCourse(ctx, c.EnrollmentService, user, courseID) {
		return
	}
	stats, err := c.AggregationService.GetCourseStats(ctx.Request.Context(), courseID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

// @Summary 报名评分
// @Tags 统计
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "报名ID"
// @Success 200 {object} util.Response{data=model.EnrollmentRating}
// @Router /enrollments/{id}/rating [get]
func (c *StatsController) GetEnrollmentRating(ctx *gin.Context) {
	enrollmentID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if _, ok := loadEnrollment(ctx, c.EnrollmentService, enrollmentID); !ok {
		return
	}
	rating, err := c.AggregationService.GetEnrollmentRating(ctx.Request.Context(), enrollmentID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, rating)
}
