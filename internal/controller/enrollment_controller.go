package controller

import (
	"fmt"
	"onlinecourse_backend/internal/service"
	"onlinecourse_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type EnrollmentController struct {
	EnrollmentService *service.EnrollmentService
}

func NewEnrollmentController(enrollmentService *service.EnrollmentService) *EnrollmentController {
	return &EnrollmentController{EnrollmentService: enrollmentService}
}

// loadEnrollment fetches the enrollment and checks the caller may act on it.
func loadEnrollment(ctx *gin.Context, svc *service.EnrollmentService, id uint) (*service.EnrollmentDetail, bool) {
	user, ok := currentUser(ctx)
	if !ok {
		return nil, false
	}
	e, err := svc.GetEnrollment(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return nil, false
	}
	if user.Role == util.RoleInstructor {
		if !authorizeCourse(ctx, svc, user, e.CourseID) {
			return nil, false
		}
		return e, true
	}
	if !user.CanActAsLearner(&e.Enrollment) {
		util.HandleError(ctx, fmt.Errorf("enrollment %d: %w", id, util.ErrPermissionDenied))
		return nil, false
	}
	return e, true
}

// authorizeCourse lets admins through and limits instructors to the courses
// they are assigned to.
func authorizeCourse(ctx *gin.Context, svc *service.EnrollmentService, user *util.Claims, courseID uint) bool {
	if user.Role == util.RoleAdmin {
		return true
	}
	if user.Role == util.RoleInstructor {
		ok, err := svc.Teaches(ctx.Request.Context(), courseID, user.InstructorID)
		if err != nil {
			util.HandleError(ctx, err)
			return false
		}
		if ok {
			return true
		}
	}
	util.HandleError(ctx, fmt.Errorf("course %d: %w", courseID, util.ErrPermissionDenied))
	return false
}

// @Summary 报名课程
// @Description 学员只能为自己报名；讲师只能在自己授课的课程中为学员报名，需要指定 learnerId
// @Tags 报名
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.EnrollReq true "报名信息"
// @Success 201 {object} util.Response{data=model.Enrollment}
// @Failure 409 {object} util.Response
// @Router /enrollments [post]
func (c *EnrollmentController) Enroll(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req service.EnrollReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if user.Role == util.RoleLearner {
		if user.LearnerID == 0 {
			util.Forbidden(ctx)
			return
		}
		req.LearnerID = user.LearnerID
	} else if !authorizeCourse(ctx, c.EnrollmentService, user, req.CourseID) {
		return
	}
	if req.LearnerID == 0 {
		util.BadRequest(ctx, "learnerId is required")
		return
	}

	enrollment, err := c.EnrollmentService.Enroll(ctx.Request.Context(), req.LearnerID, req.CourseID, req.Mode)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, enrollment)
}

// @Summary 报名详情
// @Tags 报名
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "报名ID"
// @Success 200 {object} util.Response{data=service.EnrollmentDetail}
// @Router /enrollments/{id} [get]
func (c *EnrollmentController) GetEnrollment(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	e, ok := loadEnrollment(ctx, c.EnrollmentService, id)
	if !ok {
		return
	}
	util.Success(ctx, e)
}

// @Summary 取消报名
// @Description 同时删除该报名下的全部提交记录
// @Tags 报名
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "报名ID"
// @Success 200 {object} util.Response
// @Router /enrollments/{id} [delete]
func (c *EnrollmentController) Unenroll(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if _, ok := loadEnrollment(ctx, c.EnrollmentService, id); !ok {
		return
	}
	if err := c.EnrollmentService.Unenroll(ctx.Request.Context(), id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"unenrolled": true})
}

// @Summary 课程报名列表
// @Tags 报名
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response{data=[]model.Enrollment}
// @Router /courses/{id}/enrollments [get]
func (c *EnrollmentController) ListEnrollments(ctx *gin.Context) {
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
	list, err := c.EnrollmentService.ListEnrollments(ctx.Request.Context(), courseID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, list)
}
